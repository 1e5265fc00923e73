// Package watch implements the notification watching command.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/config"
	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/zmq"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns the 'watch' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:   "watch",
		Usage:  "subscribe to node notifications and print them until interrupted",
		Action: run,
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "zmq-host",
				Usage: "host of the node's ZMQ publisher",
				Value: "127.0.0.1",
			},
			cli.IntFlag{
				Name:  "zmq-port",
				Usage: "port of the node's ZMQ publisher",
				Value: config.DefaultZMQPort,
			},
			cli.StringSliceFlag{
				Name:  "topic",
				Usage: "topic to subscribe to (can be given multiple times, all topics by default)",
			},
		},
	}}
}

func run(ctx *cli.Context) error {
	var topics []zmq.Topic
	for _, s := range ctx.StringSlice("topic") {
		t, err := zmq.ParseTopic(s)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		topics = append(topics, t)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer log.Sync()

	cl := zmq.New(zmq.Options{
		Host:   ctx.String("zmq-host"),
		Port:   ctx.Int("zmq-port"),
		Topics: topics,
		Logger: log,
	})
	w := ctx.App.Writer
	for _, t := range topicsOrAll(topics) {
		cl.On(t, func(_ context.Context, n *zmq.Notification) error {
			payload := n.Hex
			if len(payload) > 64 {
				payload = payload[:64] + "..."
			}
			fmt.Fprintf(w, "%s  %-9s  seq=%d  %s\n",
				n.Timestamp.Format("15:04:05"), n.Topic, n.Sequence, payload)
			return nil
		})
	}
	if err := cl.Start(); err != nil {
		return cli.NewExitError(err, 1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	if err := cl.Stop(); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func topicsOrAll(topics []zmq.Topic) []zmq.Topic {
	if len(topics) == 0 {
		return zmq.AllTopics()
	}
	return topics
}
