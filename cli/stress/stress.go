// Package stress implements the client stress-test command.
package stress

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/ManticoreTechnologies/evrmore-rpc/cli/options"
	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpcclient"
	"github.com/urfave/cli"
)

// NewCommands returns the 'stress' command.
func NewCommands() []cli.Command {
	flags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "command",
			Usage: "RPC method to call",
			Value: "getblockcount",
		},
		cli.IntFlag{
			Name:  "num-calls",
			Usage: "number of calls to make",
			Value: 100,
		},
		cli.IntFlag{
			Name:  "concurrency",
			Usage: "maximum number of in-flight calls",
			Value: 10,
		},
	}, options.ClientFlags...)
	return []cli.Command{{
		Name:   "stress",
		Usage:  "run repeated calls against a node and report latency statistics",
		Action: run,
		Flags:  flags,
	}}
}

func run(ctx *cli.Context) error {
	c, err := options.GetRPCClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Stress(context.Background(), rpcclient.StressOptions{
		Command:     ctx.String("command"),
		NumCalls:    ctx.Int("num-calls"),
		Concurrency: ctx.Int("concurrency"),
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := tabwriter.NewWriter(ctx.App.Writer, 0, 2, 2, ' ', 0)
	fmt.Fprintf(w, "Command:\t%s\n", res.Command)
	fmt.Fprintf(w, "Total time:\t%.2f s\n", res.TotalTime.Seconds())
	fmt.Fprintf(w, "Requests per second:\t%.2f\n", res.RequestsPerSecond)
	fmt.Fprintf(w, "Average response time:\t%.2f ms\n", res.AvgTime)
	fmt.Fprintf(w, "Median response time:\t%.2f ms\n", res.MedianTime)
	fmt.Fprintf(w, "Min response time:\t%.2f ms\n", res.MinTime)
	fmt.Fprintf(w, "Max response time:\t%.2f ms\n", res.MaxTime)
	fmt.Fprintf(w, "Number of calls:\t%d\n", res.NumCalls)
	fmt.Fprintf(w, "Concurrency:\t%d\n", res.Concurrency)
	fmt.Fprintf(w, "Failures:\t%d\n", res.Failures)
	fmt.Fprintf(w, "Last result:\t%s\n", string(res.LastResult))
	return w.Flush()
}
