package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shoproute/pkg/list"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Manage the shopping list",
}

var listShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the shopping list grouped by store",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		groups := sess.List.ItemsByStore()
		if len(groups) == 0 {
			fmt.Println("Shopping list is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		for _, g := range groups {
			fmt.Fprintf(w, "%s\t\t\n", g.Items[0].Store)
			for _, it := range g.Items {
				check := " "
				if it.Checked {
					check = "x"
				}
				fmt.Fprintf(w, "  [%s] %s\t$%.2f\t%s\n", check, it.ProductName, it.Price, it.ID)
			}
		}
		fmt.Fprintf(w, "TOTAL\t$%.2f\t\n", sess.List.TotalCost())
		return w.Flush()
	},
}

var listAddCmd = &cobra.Command{
	Use:   "add <product-id> <store-name> <price>",
	Short: "Add a priced product to the list",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		var price float64
		if _, err := fmt.Sscanf(args[2], "%f", &price); err != nil {
			return fmt.Errorf("bad price: %s", args[2])
		}

		name, _ := cmd.Flags().GetString("name")
		storeID, _ := cmd.Flags().GetString("store-id")
		if name == "" {
			if p, err := sess.DB.GetProduct(cmd.Context(), args[0]); err == nil {
				name = p.Name
			} else {
				name = args[0]
			}
		}

		item := sess.List.Add(list.Item{
			ProductID:   args[0],
			ProductName: name,
			Store:       args[1],
			StoreID:     storeID,
			Price:       price,
		})
		fmt.Printf("Added %s (%s), item id %s\n", item.ProductName, item.Store, item.ID)
		return nil
	},
}

var listRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item from the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.List.Remove(args[0])
		fmt.Println("Item removed.")
		return nil
	},
}

var listToggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Toggle an item's checked state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.List.Toggle(args[0])
		return nil
	},
}

var listClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the shopping list",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.List.Clear()
		fmt.Println("Shopping list cleared.")
		return nil
	},
}

var listTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Print the total cost of the list",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		fmt.Printf("$%.2f\n", sess.List.TotalCost())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listShowCmd)
	listCmd.AddCommand(listAddCmd)
	listCmd.AddCommand(listRemoveCmd)
	listCmd.AddCommand(listToggleCmd)
	listCmd.AddCommand(listClearCmd)
	listCmd.AddCommand(listTotalCmd)

	listAddCmd.Flags().String("name", "", "Display name snapshot (defaults to the catalog name)")
	listAddCmd.Flags().String("store-id", "", "Store id, if known")
}
