package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/store"
	"github.com/reelforge/reelforge/pkg/log"
	"github.com/reelforge/reelforge/pkg/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the db",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}

		logger := log.InitLog(log.ParseLevel(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()
		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("Migrating the db")
		defer zap.S().Info("Db migrated")

		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalf("initializing data store: %v", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if cfg.Service.MigrationFolder != "" {
			if err := migrations.MigrateStore(db, cfg.Service.MigrationFolder); err != nil {
				zap.S().Fatalf("running sql migrations: %v", err)
			}
		} else {
			if err := st.InitialMigration(); err != nil {
				zap.S().Fatalf("running initial migration: %v", err)
			}
		}

		return st.Seed()
	},
}
