package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/procurement/pkg/application/dto"
	"github.com/vsinha/procurement/pkg/application/state"
	"github.com/vsinha/procurement/pkg/domain/entities"
)

var searchQuery string

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the product catalog",
	Long: `List the product catalog with stock levels and active contracts.
With --search the service's free-text ranking is used instead.`,
	RunE: withApp(runProducts),
}

var alternativesCmd = &cobra.Command{
	Use:   "alternatives <product>",
	Short: "Suggest substitutes for a product",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runAlternatives),
}

func init() {
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(alternativesCmd)

	productsCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "free-text product search")
}

func runProducts(ctx context.Context, a *app, _ []string) error {
	products, err := a.workspace.Search(ctx, searchQuery)
	if err != nil {
		return err
	}
	return a.printer.Inventory(dto.NewInventoryRows(products))
}

func runAlternatives(ctx context.Context, a *app, args []string) error {
	if err := a.refresh(ctx, state.ResourceProducts); err != nil {
		return err
	}

	ref := parseProductRef(strings.Join(args, " "))
	id, err := a.store.ResolveProduct(ref)
	if err != nil {
		return err
	}

	alternatives, err := a.workspace.Alternatives(ctx, id)
	if err != nil {
		return err
	}
	return a.printer.Alternatives(a.productName(id, ref.String()), dto.NewAlternativeRows(alternatives))
}

func (a *app) productName(id entities.ProductID, fallback string) string {
	for _, p := range a.store.Products() {
		if p.ID == id {
			return p.Name
		}
	}
	return fallback
}
