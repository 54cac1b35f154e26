package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shoproute/pkg/geo"

	"github.com/spf13/cobra"
)

var pricesCmd = &cobra.Command{
	Use:   "prices <product-id>",
	Short: "Compare a product's price across stores, cheapest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		at, err := pointFromFlags(cmd)
		if err != nil {
			return err
		}

		quotes, err := sess.Catalog.GetProductPrices(cmd.Context(), args[0], at)
		if err != nil {
			return err
		}
		if len(quotes) == 0 {
			fmt.Println("No in-stock prices found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STORE\tPRICE\tSALE\tEFFECTIVE\tDISTANCE")
		for _, q := range quotes {
			sale := "-"
			if q.SalePrice != nil {
				sale = fmt.Sprintf("$%.2f", *q.SalePrice)
			}
			dist := "-"
			if q.Distance != nil {
				dist = fmt.Sprintf("%.1f mi", *q.Distance)
			}
			fmt.Fprintf(w, "%s\t$%.2f\t%s\t$%.2f\t%s\n", q.Store.Name, q.Price, sale, q.Effective(), dist)
		}
		return w.Flush()
	},
}

// pointFromFlags reads the optional --lat/--lng pair.
func pointFromFlags(cmd *cobra.Command) (*geo.Point, error) {
	lat, _ := cmd.Flags().GetFloat64("lat")
	lng, _ := cmd.Flags().GetFloat64("lng")
	latSet := cmd.Flags().Changed("lat")
	lngSet := cmd.Flags().Changed("lng")
	if !latSet && !lngSet {
		return nil, nil
	}
	if latSet != lngSet {
		return nil, fmt.Errorf("--lat and --lng must be given together")
	}
	return &geo.Point{Lat: lat, Lng: lng}, nil
}

func init() {
	rootCmd.AddCommand(pricesCmd)
	pricesCmd.Flags().Float64("lat", 0, "Your latitude, for distance annotations")
	pricesCmd.Flags().Float64("lng", 0, "Your longitude, for distance annotations")
}
