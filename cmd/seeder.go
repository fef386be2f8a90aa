package cmd

import (
	"context"
	"log"

	"github.com/frahmantamala/identity-api/internal/bootstrap"
	"github.com/frahmantamala/identity-api/pkg/logger"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the built-in records",
	Long:  `Create the permissions, roles, the system and guest organizations and the system user when they are missing.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.Init(cfg.Environment, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

		gdb, sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		// seeding on demand ignores bootstrap.enabled
		bootstrapCfg := cfg.Bootstrap
		bootstrapCfg.Enabled = true
		if err := bootstrapCfg.Validate(); err != nil {
			log.Fatalf("invalid bootstrap config: %v", err)
		}

		result, err := bootstrap.NewSeeder(gdb, bootstrapCfg, cfg.Security.BCryptCost, lg).Seed(context.Background())
		if err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		if result.Empty() {
			lg.Info("database already seeded")
			return
		}
		lg.Info("database seeded",
			"permissions", result.Permissions,
			"roles", result.Roles,
			"organizations", result.Organizations,
			"users", result.Users)
	},
}
