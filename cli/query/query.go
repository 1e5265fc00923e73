// Package query implements read-only node query commands.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ManticoreTechnologies/evrmore-rpc/cli/options"
	"github.com/urfave/cli"
)

// NewCommands returns the 'query' command.
func NewCommands() []cli.Command {
	return []cli.Command{{
		Name:  "query",
		Usage: "query an Evrmore node",
		Subcommands: []cli.Command{
			{
				Name:   "blockcount",
				Usage:  "print the current block height",
				Action: queryBlockCount,
				Flags:  options.ClientFlags,
			},
			{
				Name:      "block",
				Usage:     "print a block by hash or height",
				ArgsUsage: "<hash or height>",
				Action:    queryBlock,
				Flags:     options.ClientFlags,
			},
			{
				Name:      "tx",
				Usage:     "print a transaction by ID",
				ArgsUsage: "<txid>",
				Action:    queryTx,
				Flags:     options.ClientFlags,
			},
			{
				Name:   "chaininfo",
				Usage:  "print the blockchain state",
				Action: queryChainInfo,
				Flags:  options.ClientFlags,
			},
		},
	}}
}

func queryBlockCount(ctx *cli.Context) error {
	c, err := options.GetRPCClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	count, err := c.GetBlockCount(context.Background())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, count)
	return nil
}

func queryBlock(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" {
		return cli.NewExitError("block hash or height required", 1)
	}
	c, err := options.GetRPCClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	bctx := context.Background()
	hash := arg
	if height, err := strconv.ParseInt(arg, 10, 64); err == nil {
		hash, err = c.GetBlockHash(bctx, height)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
	}
	block, err := c.GetBlock(bctx, hash)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return dumpJSON(ctx, block)
}

func queryTx(ctx *cli.Context) error {
	txid := ctx.Args().First()
	if txid == "" {
		return cli.NewExitError("transaction ID required", 1)
	}
	c, err := options.GetRPCClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	tx, err := c.GetRawTransaction(context.Background(), txid)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return dumpJSON(ctx, tx)
}

func queryChainInfo(ctx *cli.Context) error {
	c, err := options.GetRPCClient(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	info, err := c.GetBlockchainInfo(context.Background())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return dumpJSON(ctx, info)
}

func dumpJSON(ctx *cli.Context, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintln(ctx.App.Writer, string(out))
	return nil
}
