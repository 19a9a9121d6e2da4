package cli

import (
	"fmt"

	"banksantri/internal/config"
	"banksantri/internal/infrastructure/database"
	"banksantri/internal/infrastructure/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "banksantri",
	Short: "Bank Santri savings ledger service",
	Long: `Bank Santri keeps the savings accounts of pesantren students: an
immutable transaction log, an append-only movement ledger and atomic
deposit, withdrawal and transfer postings.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "Path to the YAML config file")
}

// Execute runs the command selected on the command line.
func Execute() error {
	return rootCmd.Execute()
}

// bootstrap loads config, installs the global logger and opens the database.
// The returned cleanup flushes the logger and closes the pool.
func bootstrap() (*config.Config, *gorm.DB, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.Init(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(&cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.Database.Driver))

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = log.Sync()
	}
	return cfg, db, cleanup, nil
}
