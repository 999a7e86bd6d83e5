package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/vyfood/storefront/cmd/vyfood/cmd/cart"
	"github.com/vyfood/storefront/cmd/vyfood/cmd/products"
	"github.com/vyfood/storefront/cmd/vyfood/cmd/serve"
)

// CreateServeCommand creates the serve command with app dependencies.
func (a *App) CreateServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// CreateProductsCommand creates the products command with app dependencies.
func (a *App) CreateProductsCommand() *cobra.Command {
	return products.NewCommand(a)
}

// CreateCartCommand creates the cart command with app dependencies.
func (a *App) CreateCartCommand() *cobra.Command {
	return cart.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "vyfood version %s\n", a.version)
			if a.config.Verbose {
				fmt.Fprintf(out, "commit: %s\n", a.commit)
				fmt.Fprintf(out, "built: %s\n", a.date)
				fmt.Fprintf(out, "built by: %s\n", a.builtBy)
				fmt.Fprintf(out, "go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
