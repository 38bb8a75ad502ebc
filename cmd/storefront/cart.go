package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/catalog"
	"github.com/terpenos/storefront/pkg/i18n"
)

func cartCmd(configPath *string) *cobra.Command {
	var (
		visitor string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect or change a visitor's stored cart",
		Long: `Inspect or change the cart a visitor has in the configured storage.

Examples:
  storefront cart show --visitor $ID
  storefront cart add limonene-10ml 2 --visitor $ID
  storefront cart clear --visitor $ID`,
	}
	cmd.PersistentFlags().StringVarP(&visitor, "visitor", "v", "", "Visitor ID (the sf_visitor cookie value)")
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print the cart as stored JSON")

	run := func(fn func(ctx context.Context, app *storefront.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if visitor == "" {
				return errors.New("E180").WithSuggestion("Pass --visitor with the sf_visitor cookie value")
			}
			return withVisitor(cmd.Context(), *configPath, visitor, func(ctx context.Context, app *storefront.App) error {
				if err := fn(ctx, app, args); err != nil {
					return err
				}
				return printCart(cmd.OutOrStdout(), app, asJSON)
			})
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the cart",
			Args:  cobra.NoArgs,
			RunE: run(func(context.Context, *storefront.App, []string) error {
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add PRODUCT [QUANTITY]",
			Short: "Add a catalog product",
			Args:  cobra.RangeArgs(1, 2),
			RunE: run(func(ctx context.Context, app *storefront.App, args []string) error {
				p, err := demoProduct(args[0])
				if err != nil {
					return err
				}
				qty := 1
				if len(args) == 2 {
					if qty, err = parseQuantity(args[1]); err != nil {
						return err
					}
				}
				app.Cart().AddToCart(ctx, p, qty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "update PRODUCT QUANTITY",
			Short: "Set the quantity of an item; 0 removes it",
			Args:  cobra.ExactArgs(2),
			RunE: run(func(ctx context.Context, app *storefront.App, args []string) error {
				qty, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				app.Cart().UpdateQuantity(ctx, args[0], qty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove PRODUCT",
			Short: "Remove an item",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, app *storefront.App, args []string) error {
				app.Cart().RemoveFromCart(ctx, args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Empty the cart",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, app *storefront.App, args []string) error {
				app.Cart().ClearCart(ctx)
				return nil
			}),
		},
	)

	return cmd
}

// withVisitor opens the configured storage and loads one visitor's App.
func withVisitor(ctx context.Context, configPath, visitor string, fn func(context.Context, *storefront.App) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	kv, err := openBackend(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer kv.Close()

	opts, err := appOptions(cfg, newLogger(io.Discard, cfg.Logging), nil)
	if err != nil {
		return err
	}
	registry := storefront.NewRegistry(kv, opts...)
	defer registry.Close()

	app, err := registry.LoadOrCreate(ctx, visitor, storefront.WithLocale(i18n.EnvLocale()))
	if err != nil {
		return err
	}
	return fn(ctx, app)
}

func demoProduct(id string) (catalog.Product, error) {
	p, ok := catalog.Demo().Lookup(id)
	if !ok {
		return catalog.Product{}, errors.New("E160").
			WithDetail(`no product "` + id + `" in the catalog`)
	}
	return p, nil
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Newf(errors.CategoryValidation, "quantity %q is not a number", s)
	}
	return n, nil
}

func printCart(w io.Writer, app *storefront.App, asJSON bool) error {
	c := app.Cart().Cart()
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	t := app.Language().T
	fmt.Fprintf(w, "%s\n", t(i18n.CartTitle))
	if len(c.Items) == 0 {
		fmt.Fprintf(w, "  %s\n", t(i18n.CartEmpty))
		return nil
	}
	for _, it := range c.Items {
		line := it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		fmt.Fprintf(w, "  %-22s %4d x %8s = %8s\n", it.Product.ID, it.Quantity, it.Product.Price.StringFixed(2), line.StringFixed(2))
	}
	fmt.Fprintf(w, "  %s: %d\n", t(i18n.CartItemCount), c.ItemCount)
	fmt.Fprintf(w, "  %s: %s\n", t(i18n.CartTotal), c.Total.StringFixed(2))
	return nil
}
