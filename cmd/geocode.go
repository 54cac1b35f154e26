package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Resolve a free-text address to coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		point, err := geocoder().Geocode(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%f,%f\n", point.Lat, point.Lng)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
}
