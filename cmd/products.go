package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
	"github.com/ziadkadry99/product-advisor/internal/render"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List catalog products by category and search text",
	Long:  `Loads the product catalog and prints the products matching --category and --search. Without filters it lists the categories.`,
	RunE:  runProducts,
}

func init() {
	productsCmd.Flags().String("category", "", "exact category to filter by")
	productsCmd.Flags().String("search", "", "case-insensitive search over name, brand and description")
	rootCmd.AddCommand(productsCmd)
}

func runProducts(cmd *cobra.Command, args []string) error {
	category, _ := cmd.Flags().GetString("category")
	search, _ := cmd.Flags().GetString("search")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := catalog.Load(context.Background(), cfg.CatalogSource)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), catalog.PlaceholderLoadError)
		return err
	}

	out := cmd.OutOrStdout()
	res := catalog.Filter(cat.All(), category, search)
	if len(res.Products) == 0 {
		fmt.Fprintln(out, res.Placeholder)
		if category == "" && search == "" {
			fmt.Fprintln(out, "\nCategories:")
			for _, c := range cat.Categories() {
				fmt.Fprintf(out, "  %s\n", render.Capitalize(c))
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBRAND\tCATEGORY")
	for _, p := range res.Products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Brand, render.Capitalize(p.Category))
	}
	return tw.Flush()
}
