// Package cart provides commands for checking saved carts against the catalog.
package cart

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vyfood/storefront/internal/appcontext"
	"github.com/vyfood/storefront/internal/cmd/alerts"
	"github.com/vyfood/storefront/internal/cmd/output"
	"github.com/vyfood/storefront/internal/cmd/table"
	"github.com/vyfood/storefront/pkg/constants"
	"github.com/vyfood/storefront/pkg/errors"
	"github.com/vyfood/storefront/pkg/reconcile"
)

// defaultRetention is how long an untouched cart is kept by `cart prune`.
const defaultRetention = 30 * 24 * time.Hour

// NewCommand creates the cart command with app dependencies.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cart",
		Aliases: []string{"carts"},
		GroupID: "management",
		Short:   "Reconcile and maintain saved carts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewReconcileCommand(app))
	cmd.AddCommand(NewShowCommand(app))
	cmd.AddCommand(NewPruneCommand(app))

	return cmd
}

// reconcileOutput is the structured form of a reconciliation.
type reconcileOutput struct {
	*reconcile.Result `yaml:",inline"`
	Persisted         string `json:"persisted" yaml:"persisted"`
}

// NewReconcileCommand creates the cart reconcile subcommand.
func NewReconcileCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile [cart-file]",
		Short: "Reconcile a saved cart against the current catalog",
		Long: `Reconcile reads a cart as the browser persists it (a JSON array of
lines) and applies the same rules the storefront applies on every load:
invalid lines are dropped, duplicates merged, unavailable products removed,
quantities capped to stock and prices refreshed.

With no file, or "-", the cart is read from standard input.`,
		Example: `  vyfood cart reconcile saved-cart.json --demo
  echo '[{"id":"pho-bo","price":4000,"quantity":2}]' | vyfood cart reconcile --demo
  vyfood cart reconcile cart.json --write --lang vi`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			write, _ := cmd.Flags().GetBool("write")
			check, _ := cmd.Flags().GetBool("check")
			lang, _ := cmd.Flags().GetString("lang")
			return runReconcile(cmd, app, path, lang, write, check)
		},
	}

	cmd.Flags().Bool("write", false, "Write the reconciled cart back to the file")
	cmd.Flags().Bool("check", false, "Exit with an error when the cart changed")
	cmd.Flags().String("lang", "", "Language for notices, e.g. en or vi (default from config)")

	return cmd
}

func runReconcile(cmd *cobra.Command, app appcontext.Interface, path, lang string, write, check bool) error {
	if write && path == "-" {
		return errors.NewValidationError("write", path, "cannot write back to standard input")
	}

	persisted, err := readCart(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	catalog, err := app.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	r, err := app.Reconciler()
	if err != nil {
		return err
	}

	res, err := r.ReconcilePersisted(persisted, catalog)
	if err != nil {
		return err
	}
	pr := r.Printer()
	if lang != "" {
		pr = r.PrinterFor(lang)
		res.Localize(pr)
	}

	app.Logger().Debug().
		Bool("changed", res.Changed).
		Int("notices", len(res.Notices)).
		Msg("Cart reconciled")

	if write && res.NeedsPersist() {
		if err := os.WriteFile(path, []byte(res.Persisted+"\n"), constants.FilePermissions); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	if err := printResult(cmd, app, res, pr); err != nil {
		return err
	}
	if check && (res.Changed || res.Reset) {
		return fmt.Errorf("%s: %w", path, errors.ErrCartChanged)
	}
	return nil
}

func readCart(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, constants.MaxPersistedCartBytes+1))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printResult(cmd *cobra.Command, app appcontext.Interface, res *reconcile.Result, pr *reconcile.Printer) error {
	out := cmd.OutOrStdout()
	format := output.DetectFormat(app.OutputFormat())
	if !format.IsTable() {
		return output.NewFormatter(format).Format(out, reconcileOutput{Result: res, Persisted: res.Persisted})
	}

	if len(res.Cart.Lines) > 0 {
		if err := output.NewFormatter(format).Format(out, table.CartToTableData(res, pr)); err != nil {
			return err
		}
	}
	return alerts.NewWriterTo(out, !app.NoColor()).WriteAlert(alerts.FromResult(res))
}

// NewShowCommand creates the cart show subcommand.
func NewShowCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Load a stored cart the way the storefront does",
		Long: `Show loads the cart saved for a session from the cart database,
reconciles it against the catalog and saves the result, exactly as the
storefront does when the customer opens the cart.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sf, err := app.Storefront(cmd.Context())
			if err != nil {
				return err
			}
			res, err := sf.LoadCart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, app, res, sf.Reconciler().Printer())
		},
	}
}

// NewPruneCommand creates the cart prune subcommand.
func NewPruneCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete carts that have not been touched for a while",
		Example: `  vyfood cart prune
  vyfood cart prune --older-than 168h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan <= 0 {
				return errors.NewValidationError("older-than", olderThan, "must be positive")
			}

			s, err := app.CartStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			app.Logger().Info().Int("pruned", n).Dur("older_than", olderThan).Msg("Pruned carts")
			msg := fmt.Sprintf("Pruned %d carts not touched for %s", n, olderThan)
			return alerts.NewWriterTo(cmd.OutOrStdout(), !app.NoColor()).WriteAlert(alerts.NewSuccess(msg))
		},
	}

	cmd.Flags().Duration("older-than", defaultRetention, "Delete carts last saved before this long ago")

	return cmd
}
