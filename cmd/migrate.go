package cmd

import (
	"fmt"

	"audiochan/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed genres",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, err := db.Connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		n, err := db.SeedGenres(gdb)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date, %d genres seeded\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
