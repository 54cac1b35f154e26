package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the shoproute database",
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := dbPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", path)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, path, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints row counts for the catalog and user data tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		stats, err := sess.DB.GetStats(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "TABLE\tROWS\t")
		fmt.Fprintf(w, "products\t%d\t\n", stats.Products)
		fmt.Fprintf(w, "stores\t%d\t\n", stats.Stores)
		fmt.Fprintf(w, "product_prices\t%d\t\n", stats.Prices)
		fmt.Fprintf(w, "user_store_roster\t%d\t\n", stats.RosterEntries)
		fmt.Fprintf(w, "user_locations\t%d\t\n", stats.Locations)
		fmt.Fprintf(w, "user_search_history\t%d\t\n", stats.Searches)
		return w.Flush()
	},
}

// historyCmd prints recent lookups.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent product lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := sess.DB.ListRecentSearches(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No search history.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tTERM")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\n", rec.SearchedAt.Format("2006-01-02 15:04:05"), rec.SearchType, rec.UPC)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 25, "Maximum entries to show")
}
