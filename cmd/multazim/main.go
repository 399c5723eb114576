package main

import (
	"github.com/alecthomas/kong"

	"multazim/cmd/multazim/commands"
	"multazim/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("multazim"),
		kong.Description("Telegram bot tracking daily devotional tasks."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
