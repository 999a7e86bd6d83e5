package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/logging"
)

// Exit statuses beyond the generic failure.
const (
	ExitFailure     = 1
	ExitCartChanged = 2
	ExitUsage       = 64
	ExitUnavailable = 69
)

// Execute parses args and runs the selected command.
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.createRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// commandGroups are listed in help output in this order.
var commandGroups = []*cobra.Group{
	{ID: "core", Title: "Storefront:"},
	{ID: "management", Title: "Maintenance:"},
}

func (a *App) createRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "vyfood",
		Short:   "VyFood storefront server and tools",
		Version: a.version,
		Long: `VyFood runs the customer-facing storefront of the VyFood shop and
provides tools for inspecting the catalog and maintaining saved carts.

Carts are checked against the live catalog every time they are loaded:
products that disappeared or sold out are removed, quantities are capped to
stock and prices are refreshed, and the customer is told what changed.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.AddGroup(commandGroups...)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.vyfood.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolP("quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.Bool("no-color", false, "disable colored output")
	flags.StringP("format", "o", "", "output format: table, json, yaml, wide")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.String("backend-url", "", "backend service base URL")
	flags.String("catalog", "", "catalog file (YAML or JSON)")
	flags.Bool("demo", false, "use the built-in sample menu as the catalog")

	a.bindFlags(flags)

	root.SetVersionTemplate("vyfood {{.Version}}\n")
	root.AddCommand(
		a.CreateServeCommand(),
		a.CreateProductsCommand(),
		a.CreateCartCommand(),
		a.NewVersionCommand(),
	)
	return root
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"verbose":     "verbose",
	"quiet":       "quiet",
	"no-color":    "no-color",
	"format":      "format",
	"log-level":   "log.level",
	"backend-url": "backend.url",
	"catalog":     "catalog.file",
	"demo":        "demo",
}

// bindFlags lets explicitly set flags override env and file values.
func (a *App) bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic("programming error: binding flag " + name + ": " + err.Error())
		}
	}
}

// setupCommand is called before any command runs. It reads an explicitly
// named config file, rebuilds the configuration with flags applied and
// reinitializes the logger.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if path := mustGetString(cmd, "config"); path != "" {
		if err := readConfigFile(a.v, expandHome(path)); err != nil {
			return err
		}
	}

	a.config = configFromViper(a.v)

	logger := NewLogger(a.config)
	logging.SetDefault(logger)
	a.logger = &logger

	a.logger.Debug().
		Str("command", cmd.CommandPath()).
		Str("config_file", a.config.ConfigFile).
		Msg("Configuration loaded")

	return nil
}

// ExitCode maps a command error to a process exit status: cart changes
// (from `cart reconcile --check`) give 2, bad input 64 and an unreachable
// backend 69.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.IsCartChanged(err):
		return ExitCartChanged
	case errors.IsValidationError(err):
		return ExitUsage
	case errors.IsBackendUnavailable(err), errors.IsTimeout(err):
		return ExitUnavailable
	}
	return ExitFailure
}

// ExitOnError reports err on stderr and exits with ExitCode(err). A nil err
// returns.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	reportError(os.Stderr, err)
	os.Exit(ExitCode(err))
}

func reportError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "vyfood: %v\n", err)
}

// mustGetString reads a flag this package defined; a missing flag is a bug.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: flag " + name + ": " + err.Error())
	}
	return val
}
