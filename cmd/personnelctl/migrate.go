package main

import (
	"fmt"

	"github.com/ericfitz/personnel/api/models"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		gormDB, err := openDatabase()
		if err != nil {
			return err
		}
		defer func() { _ = gormDB.Close() }()

		all := models.AllModels()
		if err := gormDB.AutoMigrate(all...); err != nil {
			return err
		}

		sqlDB, err := gormDB.DB().DB()
		if err != nil {
			return err
		}
		if err := db.RefreshConnectionPool(cmd.Context(), sqlDB); err != nil {
			return fmt.Errorf("verify connection after migration: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d tables on %s\n", len(all), gormDB.DatabaseType())
		return nil
	},
}
