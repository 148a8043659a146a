package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lucky-wheel/internal/config"
	"lucky-wheel/internal/db"
)

// wheelctl is the operator tool: schema migrations and demo seeding.
func main() {
	root := &cobra.Command{
		Use:          "wheelctl",
		Short:        "lucky-wheel operations tool",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return db.Migrate(cfg.Psql.Addr.String())
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "insert a live demo campaign with the reference wheel layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.NewPostgresPool(cmd.Context(), cfg.Psql)
			if err != nil {
				return err
			}
			defer pool.Close()
			return db.Seed(cmd.Context(), pool)
		},
	}
}
