package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Simulate SimulateCmd      `cmd:"" help:"Play simulated blackjack hands and slot spins"`
	Migrate  MigrateCmd       `cmd:"" help:"Apply database migrations"`
	Status   StatusCmd        `cmd:"" help:"Print jackpot status and observed RTP"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tucocasino"),
		kong.Description("Blackjack and progressive slot engine"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
