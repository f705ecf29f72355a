package inventory

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the inventory service into the feature loader.
type Feature struct {
	service *Service
	logger  *zap.Logger
}

// NewFeature creates the inventory feature.
func NewFeature(service *Service, logger *zap.Logger) *Feature {
	return &Feature{service: service, logger: logger}
}

// Name identifies the feature.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled reports whether the feature should load. Inventory is the core
// of the application and is always on.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load migrates the schema and registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	if err := f.service.Migrate(); err != nil {
		return fmt.Errorf("inventory migration failed: %w", err)
	}
	handler := NewHandler(f.service, f.logger)
	handler.RegisterRoutes(app)
	f.logger.Info("Inventory feature loaded")
	return nil
}
