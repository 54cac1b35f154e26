package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage your ordered roster of preferred stores",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the roster in preference order",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		entries, err := sess.Roster.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Roster is empty. Add stores with: shoproute roster add <store-id>")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ENTRY\tORDER\tSTORE\tADDRESS")
		for _, e := range entries {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s, %s, %s %s\n",
				e.ID, e.PreferenceOrder, e.Store.Name,
				e.Store.Address, e.Store.City, e.Store.State, e.Store.ZipCode)
		}
		return w.Flush()
	},
}

var rosterAddCmd = &cobra.Command{
	Use:   "add <store-id>",
	Short: "Append a store to the roster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		storeID := args[0]
		if sess.Roster.Contains(cmd.Context(), storeID) {
			fmt.Println("Store is already on the roster.")
			return nil
		}
		if !sess.Roster.Add(cmd.Context(), storeID) {
			return fmt.Errorf("could not add store %s to the roster", storeID)
		}
		fmt.Println("Store added.")
		return nil
	},
}

var rosterRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Remove a roster entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad entry id: %s", args[0])
		}
		if !sess.Roster.Remove(cmd.Context(), id) {
			return fmt.Errorf("could not remove roster entry %d", id)
		}
		fmt.Println("Store removed.")
		return nil
	},
}

var rosterMoveCmd = &cobra.Command{
	Use:   "move <entry-id> <new-index>",
	Short: "Move a roster entry to a new position (0 = most preferred)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("bad entry id: %s", args[0])
		}
		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad index: %s", args[1])
		}
		if err := sess.Roster.Reorder(cmd.Context(), id, index); err != nil {
			return err
		}
		fmt.Println("Roster reordered.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterAddCmd)
	rosterCmd.AddCommand(rosterRemoveCmd)
	rosterCmd.AddCommand(rosterMoveCmd)
}
