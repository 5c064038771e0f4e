package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nappylocks/client-sdk/internal/core/domain"
)

func newCartCmd(a *app) *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Manage the shopping cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show cart contents and totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := a.cart.Items()
			if items == nil {
				items = []domain.CartItem{}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"items":       items,
				"total_items": a.cart.TotalItems(),
				"total_price": a.cart.TotalPrice(),
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			price, _ := cmd.Flags().GetFloat64("price")
			image, _ := cmd.Flags().GetString("image-url")

			a.cart.AddItem(cmd.Context(), domain.CartItem{
				ProductID: args[0],
				Name:      name,
				UnitPrice: price,
				ImageURL:  image,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "cart: %d items\n", a.cart.TotalItems())
			return nil
		},
	}
	add.Flags().String("name", "", "Product display name")
	add.Flags().Float64("price", 0, "Unit price")
	add.Flags().String("image-url", "", "Product image reference")

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cart.RemoveItem(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "cart: %d items\n", a.cart.TotalItems())
			return nil
		},
	}

	setQty := &cobra.Command{
		Use:   "set-quantity <product-id> <quantity>",
		Short: "Set a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quantity must be an integer: %w", err)
			}
			a.cart.UpdateQuantity(cmd.Context(), args[0], qty)
			fmt.Fprintf(cmd.OutOrStdout(), "cart: %d items\n", a.cart.TotalItems())
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.cart.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}

	cart.AddCommand(list, add, remove, setQty, clear)
	return cart
}
