// Package app wires all CLI commands into a single application.
package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/ManticoreTechnologies/evrmore-rpc/cli/query"
	"github.com/ManticoreTechnologies/evrmore-rpc/cli/stress"
	"github.com/ManticoreTechnologies/evrmore-rpc/cli/watch"
	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "evrmore-rpc\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates an evrmore-rpc instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "evrmore-rpc"
	ctl.Version = config.Version
	ctl.Usage = "Evrmore node RPC and notification client"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, query.NewCommands()...)
	ctl.Commands = append(ctl.Commands, stress.NewCommands()...)
	ctl.Commands = append(ctl.Commands, watch.NewCommands()...)
	return ctl
}
