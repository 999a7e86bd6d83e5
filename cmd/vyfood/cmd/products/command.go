// Package products provides commands for inspecting the product catalog.
package products

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vyfood/storefront/internal/appcontext"
	"github.com/vyfood/storefront/internal/cmd/output"
	"github.com/vyfood/storefront/internal/cmd/table"
	"github.com/vyfood/storefront/pkg/catalogs"
	"github.com/vyfood/storefront/pkg/differ"
	"github.com/vyfood/storefront/pkg/errors"
)

// NewCommand creates the products command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "menu"},
		GroupID: "core",
		Short:   "Inspect the product catalog",
		Long: `Products reads the catalog from the configured source (backend.url,
catalog.file or --demo) and prints it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand(app))
	cmd.AddCommand(NewShowCommand(app))
	cmd.AddCommand(NewDiffCommand(app))

	return cmd
}

// NewListCommand creates the products list subcommand.
func NewListCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List products",
		Example: `  vyfood products list --demo
  vyfood products list --category noodles --available
  vyfood products list --filter 'price < 5000 && stock > 0' -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := catalogs.Filter{}
			f.Expression, _ = cmd.Flags().GetString("filter")
			f.Category, _ = cmd.Flags().GetString("category")
			f.Query, _ = cmd.Flags().GetString("search")
			f.AvailableOnly, _ = cmd.Flags().GetBool("available")
			all, _ := cmd.Flags().GetBool("all")
			return list(cmd, app, f, all)
		},
	}

	cmd.Flags().String("filter", "", "Filter expression, e.g. 'price < 5000 && stock > 0'")
	cmd.Flags().String("category", "", "Only products in this category")
	cmd.Flags().StringP("search", "s", "", "Search names and descriptions")
	cmd.Flags().Bool("available", false, "Only products that can be ordered")
	cmd.Flags().Bool("all", false, "Include hidden products")

	return cmd
}

func list(cmd *cobra.Command, app appcontext.Interface, f catalogs.Filter, all bool) error {
	catalog, err := app.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	products, err := catalog.Filter(f)
	if err != nil {
		return err
	}
	if !all {
		visible := products[:0]
		for _, p := range products {
			if !p.Hidden {
				visible = append(visible, p)
			}
		}
		products = visible
	}

	app.Logger().Debug().Int("count", len(products)).Str("source", catalog.Source()).Msg("Listing products")

	format := output.DetectFormat(app.OutputFormat())
	if !format.IsTable() {
		if products == nil {
			products = []catalogs.Product{}
		}
		return output.NewFormatter(format).Format(cmd.OutOrStdout(), products)
	}

	r, err := app.Reconciler()
	if err != nil {
		return err
	}
	data := table.ProductsToTableData(products, format == output.FormatWide, r.Printer())
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}

// NewShowCommand creates the products show subcommand.
func NewShowCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "show <product-id>",
		Aliases: []string{"get"},
		Short:   "Show one product",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := app.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			p, ok := catalog.Get(args[0])
			if !ok {
				return errors.NewNotFoundError("product", args[0])
			}
			return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(cmd.OutOrStdout(), p)
		},
	}
}

// NewDiffCommand creates the products diff subcommand.
func NewDiffCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old-catalog> [new-catalog]",
		Short: "Show what changed between two catalogs",
		Long: `Diff compares two catalog files. With one argument the file is compared
against the configured catalog source.`,
		Example: `  vyfood products diff yesterday.yaml today.yaml
  vyfood products diff snapshot.json --demo`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := catalogs.Load(args[0])
			if err != nil {
				return err
			}
			var updated *catalogs.Catalog
			if len(args) == 2 {
				updated, err = catalogs.Load(args[1])
			} else {
				updated, err = app.Catalog(cmd.Context())
			}
			if err != nil {
				return err
			}

			changes := differ.New().Catalogs(old, updated)
			format := output.DetectFormat(app.OutputFormat())
			if !format.IsTable() {
				return output.NewFormatter(format).Format(cmd.OutOrStdout(), changes)
			}
			if changes.IsEmpty() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return err
			}
			if err := output.NewFormatter(format).Format(cmd.OutOrStdout(), table.ChangesetToTableData(changes)); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(changes.String()))
			return err
		},
	}
}
