package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/charmrelease/cmd/charmrelease/commands"
	"git.home.luguber.info/inful/charmrelease/internal/executor"
	"git.home.luguber.info/inful/charmrelease/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("charmrelease"),
		kong.Description("Build the charm in the current checkout, push it to the charm store and release it to channels."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	global := &commands.Global{
		Ctx:    ctx,
		Runner: executor.NewRunner(),
		Out:    os.Stdout,
	}
	err := parser.Run(global, cli)
	stop()
	os.Exit(commands.Report(err, cli.Verbose))
}
