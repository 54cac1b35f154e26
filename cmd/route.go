package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"shoproute/pkg/route"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan the store visit order for the current shopping list",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		origin, err := pointFromFlags(cmd)
		if err != nil {
			return err
		}

		planner := &route.Planner{
			List:   sess.List,
			Roster: sess.Roster,
			Stores: sess.DB,
			Origin: origin,
		}
		stops, err := planner.OptimizedRoute(cmd.Context())
		if err != nil {
			return err
		}
		if len(stops) == 0 {
			fmt.Println("Shopping list is empty, nothing to plan.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "#\tSTORE\tITEMS\tSUBTOTAL\tTIME\tDISTANCE")
		for i, stop := range stops {
			dist := "-"
			if stop.DistanceMiles > 0 {
				dist = fmt.Sprintf("%.1f mi", stop.DistanceMiles)
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t$%.2f\t%d min\t%s\n",
				i+1, stop.Store, len(stop.Items), stop.Subtotal, stop.EstimatedMinutes, dist)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().Float64("lat", 0, "Your latitude, for real stop distances")
	routeCmd.Flags().Float64("lng", 0, "Your longitude, for real stop distances")
}
