package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mentally-gamez-soft/ws-blog/internal/db"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage the database schema",
}

var schemaApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create missing tables, constraints and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sqlDB, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		if err := db.EnsureSchema(cmd.Context(), sqlDB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaApplyCmd)
}
