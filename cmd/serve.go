package cmd

import (
	"shoproute/internal/server"
	"shoproute/internal/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shoproute JSON API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession()
		if err != nil {
			return err
		}
		defer sess.Close()

		listenAddr, _ := cmd.Flags().GetString("listen")

		srv := &server.Server{
			DB:       sess.DB,
			Catalog:  sess.Catalog,
			Roster:   sess.Roster,
			List:     sess.List,
			Geocoder: geocoder(),
			Username: viper.GetString("server.username"),
			Password: viper.GetString("server.password"),
		}
		if kc, err := krogerClient(); err == nil {
			srv.Kroger = kc
		} else {
			utils.Log.Warnf("Kroger integration disabled: %v", err)
		}

		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
}
