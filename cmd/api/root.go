package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orgroles/internal/config"
	"orgroles/internal/db"
	"orgroles/internal/logger"
	"orgroles/internal/seed"
)

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	cmd := &cobra.Command{
		Use:           "orgroles",
		Short:         "Company / department / job role directory service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	cmd.AddCommand(serve, newMigrateCmd(), newSeedCmd(), newImportCmd(), newExportCmd())
	return cmd
}

// runtime is what every command needs before doing its work.
type runtime struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB
}

func bootstrap() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel, cfg.Environment)
	gdb, err := db.Connect(cfg.DBDriver, cfg.DSN, logger.WithComponent(log, "db"))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &runtime{cfg: cfg, log: log, db: gdb}, nil
}

func (rt *runtime) close() {
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.log.Sync()
}

func (rt *runtime) setup(ctx context.Context) error {
	if err := db.AutoMigrate(rt.db); err != nil {
		return err
	}
	rt.log.Info("migrations applied")
	admin := seed.Admin{Email: rt.cfg.AdminEmail, Password: rt.cfg.AdminPassword}
	return seed.FirstSetup(ctx, rt.db, admin, logger.WithComponent(rt.log, "seed"))
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()
			if err := db.AutoMigrate(rt.db); err != nil {
				return err
			}
			rt.log.Info("migrations applied")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and write default access roles, settings and the administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()
			return rt.setup(cmd.Context())
		},
	}
}
