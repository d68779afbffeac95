package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/product-advisor/internal/catalog"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactively select the products you own",
	Long:  `Shows the catalog in a picker. Choosing a product toggles it; the selection is saved and used by the chat command.`,
	RunE:  runPick,
}

func init() {
	pickCmd.Flags().String("category", "", "only show this category")
	rootCmd.AddCommand(pickCmd)
}

const pickDone = "✔ Done"

func runPick(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	category, _ := cmd.Flags().GetString("category")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	adv, err := app.newAdvisor(ctx, cliSession)
	if err != nil {
		fmt.Println(catalog.PlaceholderLoadError)
		return err
	}

	products := adv.Snapshot().Products
	if category != "" {
		products = catalog.Filter(products, category, "").Products
	}
	if len(products) == 0 {
		fmt.Println(catalog.PlaceholderNoMatches)
		return nil
	}

	cursor := 0
	for {
		view := adv.Selection()
		selected := make(map[int]bool, len(view.IDs))
		for _, id := range view.IDs {
			selected[id] = true
		}

		items := []string{pickDone}
		for _, p := range products {
			mark := "[ ]"
			if selected[p.ID] {
				mark = "[x]"
			}
			items = append(items, fmt.Sprintf("%s %s (%s)", mark, p.Name, p.Brand))
		}

		prompt := promptui.Select{
			Label:     view.Summary,
			Items:     items,
			Size:      12,
			CursorPos: cursor,
		}
		idx, _, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return fmt.Errorf("picker: %w", err)
		}
		if idx == 0 {
			fmt.Println(adv.Selection().Summary)
			return nil
		}

		cursor = idx
		if _, err := adv.ToggleProduct(ctx, products[idx-1].ID); err != nil {
			return err
		}
	}
}
