// Where: internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/seedbox-dev/seedbox/internal/seedenv"
	"github.com/seedbox-dev/seedbox/internal/version"
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Manifest string `short:"m" default:"seedbox.yaml" help:"Path to topology manifest"`
	EnvFile  string `name:"env-file" help:"Path to .env file"`

	Up       UpCmd       `cmd:"" help:"Wait for declared resources and seed them"`
	Seed     SeedCmd     `cmd:"" help:"Seed declared resources without readiness probing"`
	Validate ValidateCmd `cmd:"" help:"Validate the topology manifest"`
	Init     InitCmd     `cmd:"" help:"Write a starter topology manifest"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type UpCmd struct {
	Count  int  `short:"n" help:"Records to seed per resource (default: SEEDBOX_SEED_COUNT)"`
	NoWait bool `help:"Skip readiness probing and signal resources immediately"`
}

// SeedCmd is the probe-free variant of up for resources known to be running.
type SeedCmd struct {
	Count int `short:"n" help:"Records to seed per resource (default: SEEDBOX_SEED_COUNT)"`
}

type ValidateCmd struct{}

type InitCmd struct {
	Project string `arg:"" optional:"" help:"Project name (default: seedbox)"`
	Force   bool   `help:"Overwrite an existing manifest"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	if deps.LoadEnv == nil {
		deps.LoadEnv = seedenv.Load
	}

	cli := CLI{}
	parser, err := kong.New(&cli)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	switch ctx.Command() {
	case "up":
		return runUp(cli, deps, out)
	case "seed":
		cli.Up.Count = cli.Seed.Count
		cli.Up.NoWait = true
		return runUp(cli, deps, out)
	case "validate":
		return runValidate(cli, deps, out)
	case "init", "init <project>":
		return runInit(cli, deps, out)
	case "version":
		fmt.Fprintln(out, version.GetVersion())
		return 0
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

// exitWithError writes the error and returns the CLI failure code.
func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
