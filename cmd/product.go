package cmd

import (
	"errors"
	"fmt"
	"strings"

	"shoproute/pkg/retry"
	"shoproute/pkg/storage"

	"github.com/spf13/cobra"
)

var productCmd = &cobra.Command{
	Use:   "product <upc>",
	Short: "Look up a product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		// Transient lookup failures get a few quick retries; a clean
		// not-found is final immediately.
		var product storage.Product
		err = retry.Default.Do(cmd.Context(), func() error {
			var lookupErr error
			product, lookupErr = sess.Catalog.GetProductByUPC(cmd.Context(), args[0])
			if errors.Is(lookupErr, storage.ErrNotFound) {
				return nil
			}
			return lookupErr
		})
		if err != nil {
			return err
		}
		if product.ID == "" {
			fmt.Printf("No product found for barcode %s.\n", args[0])
			return nil
		}

		fmt.Printf("%s\n", product.Name)
		fmt.Printf("  id:       %s\n", product.ID)
		fmt.Printf("  upc:      %s\n", product.UPC)
		if product.Brand != "" {
			fmt.Printf("  brand:    %s\n", product.Brand)
		}
		if product.Size != "" {
			fmt.Printf("  size:     %s\n", product.Size)
		}
		if product.Category != "" {
			fmt.Printf("  category: %s\n", product.Category)
		}
		if len(product.Allergens) > 0 {
			fmt.Printf("  allergens: %s\n", strings.Join(product.Allergens, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productCmd)
}
