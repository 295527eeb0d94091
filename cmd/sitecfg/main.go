package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitecfg/cmd/sitecfg/commands"
	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := commands.NewGlobal()
	ctx := kong.Parse(cli,
		kong.Name("sitecfg"),
		kong.Description("Resolve and validate a documentation site configuration."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := ctx.Run(global, cli)
	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
