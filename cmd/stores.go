package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shoproute/pkg/geo"

	"github.com/spf13/cobra"
)

var storesCmd = &cobra.Command{
	Use:   "stores",
	Short: "Browse and sync store locations",
}

var storesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all known stores",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		stores, err := sess.DB.ListStores(cmd.Context())
		if err != nil {
			return err
		}
		if len(stores) == 0 {
			fmt.Println("No stores yet. Try: shoproute stores sync --lat <lat> --lng <lng>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tADDRESS")
		for _, s := range stores {
			fmt.Fprintf(w, "%s\t%s\t%s, %s, %s %s\n", s.ID, s.Name, s.Address, s.City, s.State, s.ZipCode)
		}
		return w.Flush()
	},
}

var storesNearCmd = &cobra.Command{
	Use:   "near",
	Short: "List stores within a radius of a point or address",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		at, err := resolveOrigin(cmd)
		if err != nil {
			return err
		}
		radius, _ := cmd.Flags().GetFloat64("radius")

		stores, err := sess.Catalog.FindStoresNear(cmd.Context(), *at, radius)
		if err != nil {
			return err
		}
		if len(stores) == 0 {
			fmt.Println("No stores in range.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDISTANCE\tADDRESS")
		for _, s := range stores {
			fmt.Fprintf(w, "%s\t%s\t%.1f mi\t%s, %s\n", s.ID, s.Name, s.Distance, s.Address, s.City)
		}
		return w.Flush()
	},
}

var storesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch Kroger store locations around a point into the local catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		kc, err := krogerClient()
		if err != nil {
			return err
		}

		at, err := resolveOrigin(cmd)
		if err != nil {
			return err
		}
		radius, _ := cmd.Flags().GetInt("radius")

		stores, err := kc.SyncLocations(cmd.Context(), sess.DB, at.Lat, at.Lng, radius)
		if err != nil {
			return err
		}
		fmt.Printf("Found and synced %d Kroger locations\n", len(stores))
		return nil
	},
}

var productsSyncCmd = &cobra.Command{
	Use:   "sync <query>",
	Short: "Fetch Kroger products matching a query into the local catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		kc, err := krogerClient()
		if err != nil {
			return err
		}

		locationID, _ := cmd.Flags().GetString("location")
		products, err := kc.SyncProducts(cmd.Context(), sess.DB, args[0], locationID)
		if err != nil {
			return err
		}
		fmt.Printf("Synced %d products\n", len(products))
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Catalog sync operations",
}

// resolveOrigin turns --lat/--lng or --address into a point.
func resolveOrigin(cmd *cobra.Command) (*geo.Point, error) {
	at, err := pointFromFlags(cmd)
	if err != nil {
		return nil, err
	}
	if at != nil {
		return at, nil
	}
	address, _ := cmd.Flags().GetString("address")
	if address == "" {
		return nil, fmt.Errorf("give either --lat/--lng or --address")
	}
	point, err := geocoder().Geocode(cmd.Context(), address)
	if err != nil {
		return nil, err
	}
	return &point, nil
}

func init() {
	rootCmd.AddCommand(storesCmd)
	storesCmd.AddCommand(storesListCmd)
	storesCmd.AddCommand(storesNearCmd)
	storesCmd.AddCommand(storesSyncCmd)

	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsSyncCmd)

	for _, c := range []*cobra.Command{storesNearCmd, storesSyncCmd} {
		c.Flags().Float64("lat", 0, "Latitude")
		c.Flags().Float64("lng", 0, "Longitude")
		c.Flags().String("address", "", "Free-text address to geocode instead of coordinates")
	}
	storesNearCmd.Flags().Float64("radius", 25, "Search radius in miles")
	storesSyncCmd.Flags().Int("radius", 25, "Search radius in miles")
	productsSyncCmd.Flags().String("location", "", "Kroger location id, to also sync prices for that store")
}
