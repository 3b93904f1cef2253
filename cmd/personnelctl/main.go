// Command personnelctl administers a personnel database: schema migration,
// field definition listing, offline record validation and token handling.
package main

import (
	"fmt"
	"os"

	"github.com/ericfitz/personnel/api"
	"github.com/ericfitz/personnel/auth/db"
	"github.com/ericfitz/personnel/internal/config"
	"github.com/ericfitz/personnel/internal/secrets"
	"github.com/ericfitz/personnel/internal/slogging"
	"github.com/spf13/cobra"
)

var (
	configFile string
	jsonOutput bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "personnelctl <command>",
	Short:         "Administer the personnel service",
	Version:       api.GetVersionString(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		provider, err := secrets.NewProvider(cmd.Context(), loaded.Secrets)
		if err != nil {
			return err
		}
		defer func() { _ = provider.Close() }()
		if err := secrets.Apply(cmd.Context(), provider, loaded); err != nil {
			return err
		}

		logging := loaded.LoggerConfig()
		logging.LogDir = ""
		logging.Output = cmd.ErrOrStderr()
		if err := slogging.Initialize(logging); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openDatabase connects with the configured database
func openDatabase() (*db.GormDB, error) {
	gormDB, err := db.NewGormDB(cfg.GormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", cfg.Database.Type, err)
	}
	return gormDB, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
