package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shoproute/pkg/storage"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Manage saved locations (home, work, ...)",
}

var locationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved locations, primary first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		locations, err := sess.DB.ListUserLocations(cmd.Context())
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			fmt.Println("No saved locations.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tADDRESS\tCOORDS\tPRIMARY")
		for _, l := range locations {
			primary := ""
			if l.IsPrimary {
				primary = "*"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%.4f,%.4f\t%s\n", l.ID, l.Name, l.Address, l.Latitude, l.Longitude, primary)
		}
		return w.Flush()
	},
}

var locationsAddCmd = &cobra.Command{
	Use:   "add <name> <address>",
	Short: "Save a location, geocoding its address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		point, err := geocoder().Geocode(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		primary, _ := cmd.Flags().GetBool("primary")
		id, err := sess.DB.SaveUserLocation(cmd.Context(), storage.UserLocation{
			Name:      args[0],
			Address:   args[1],
			Latitude:  point.Lat,
			Longitude: point.Lng,
			IsPrimary: primary,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Saved location %d at %f,%f\n", id, point.Lat, point.Lng)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locationsCmd)
	locationsCmd.AddCommand(locationsListCmd)
	locationsCmd.AddCommand(locationsAddCmd)
	locationsAddCmd.Flags().Bool("primary", false, "Mark as the primary location")
}
