package cmd

import (
	"rims/core/audit"
	"rims/core/config"
	"rims/core/database"
	"rims/core/logger"
	"rims/core/storage"
	"rims/feature/inventory"

	"go.uber.org/zap"
)

// bootstrap loads configuration and builds an inventory service for the
// offline commands (import, backup, restore). The storage client is optional.
func bootstrap() (*inventory.Service, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, logg, err
	}

	auditLog, err := audit.New(cfg.Audit)
	if err != nil {
		return nil, logg, err
	}

	var store storage.Client
	if s, err := storage.NewClient(cfg.Storage); err != nil {
		logg.Warn("Optional storage connection failed", zap.Error(err))
	} else {
		store = s
	}

	service := inventory.NewService(db, logg, store, cfg.Storage, auditLog, cfg.Inventory)
	if err := service.Migrate(); err != nil {
		return nil, logg, err
	}
	return service, logg, nil
}
