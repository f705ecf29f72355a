// Package restore wipes and repopulates all three entity kinds from one
// combined backup workbook, atomically.
//
// A restore is the one place where a soft import warning becomes a hard
// failure: any warning from any sub-import rolls back the entire operation,
// including the initial deletes, so a partially restored database is never
// observable.
package restore

import (
	"context"
	"fmt"

	"rims/core/audit"
	"rims/feature/inventory/importer"
	"rims/feature/inventory/models"
	"rims/feature/inventory/sheet"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Capabilities is the permission set granted by the caller's auth layer.
// The core does not authenticate; it only refuses a restore unless every
// flag is present.
type Capabilities struct {
	AddSite       bool
	ChangeSite    bool
	DeleteSite    bool
	AddProduct    bool
	ChangeProduct bool
	DeleteProduct bool
	AddItem       bool
	ChangeItem    bool
	DeleteItem    bool
}

// Full reports whether every capability is granted.
func (c Capabilities) Full() bool {
	return c.AddSite && c.ChangeSite && c.DeleteSite &&
		c.AddProduct && c.ChangeProduct && c.DeleteProduct &&
		c.AddItem && c.ChangeItem && c.DeleteItem
}

// FullCapabilities grants everything. CLI restores run with this.
func FullCapabilities() Capabilities {
	return Capabilities{
		AddSite: true, ChangeSite: true, DeleteSite: true,
		AddProduct: true, ChangeProduct: true, DeleteProduct: true,
		AddItem: true, ChangeItem: true, DeleteItem: true,
	}
}

// ErrPermissionDenied is returned when the caller lacks a required capability.
var ErrPermissionDenied = fmt.Errorf("restore requires add, change and delete permission for sites, products and inventory")

// Orchestrator coordinates the all-or-nothing restore.
type Orchestrator struct {
	db     *gorm.DB
	imp    *importer.Importer
	audit  *audit.Logger
	logger *zap.Logger
}

// New creates a restore orchestrator.
func New(db *gorm.DB, imp *importer.Importer, auditLog *audit.Logger, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{db: db, imp: imp, audit: auditLog, logger: logger}
}

// Restore replaces the entire database content with the workbook content.
//
// Inside one transaction: delete all inventory items, products and sites,
// then import sites, products and inventory from the workbook with original
// timestamps retained. Any structural error or import warning rolls the
// whole transaction back. Returns a human-readable summary on success.
func (o *Orchestrator) Restore(ctx context.Context, wb *sheet.Workbook, actor string, caps Capabilities) (string, error) {
	if !caps.Full() {
		return "", ErrPermissionDenied
	}

	var nSites, nProducts, nItems int
	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Child rows first so foreign keys never dangle mid-transaction.
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.InventoryItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear inventory: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ProductInformation{}).Error; err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Site{}).Error; err != nil {
			return fmt.Errorf("failed to clear sites: %w", err)
		}

		imp := o.imp.WithDB(tx)
		opts := importer.Options{Save: true, RetainModified: true}

		sites, warning, err := imp.ImportSites(ctx, wb, actor, opts)
		if err != nil {
			return fmt.Errorf("site import failed: %w", err)
		}
		if warning != "" {
			return fmt.Errorf("site import reported: %s", warning)
		}

		products, warning, err := imp.ImportProducts(ctx, wb, actor, opts)
		if err != nil {
			return fmt.Errorf("product import failed: %w", err)
		}
		if warning != "" {
			return fmt.Errorf("product import reported: %s", warning)
		}

		items, warning, err := imp.ImportInventory(ctx, wb, actor, opts)
		if err != nil {
			return fmt.Errorf("inventory import failed: %w", err)
		}
		if warning != "" {
			return fmt.Errorf("inventory import reported: %s", warning)
		}

		nSites, nProducts, nItems = len(sites), len(products), len(items)
		return nil
	})
	if err != nil {
		o.logger.Error("Restore rolled back", zap.String("actor", actor), zap.Error(err))
		o.audit.Record(actor, "restore failed", zap.String("error", err.Error()))
		return "", err
	}

	msg := fmt.Sprintf("Restored %d sites, %d products and %d inventory items", nSites, nProducts, nItems)
	o.logger.Info("Restore complete",
		zap.String("actor", actor),
		zap.Int("sites", nSites),
		zap.Int("products", nProducts),
		zap.Int("items", nItems),
	)
	o.audit.Record(actor, "restore complete",
		zap.Int("sites", nSites),
		zap.Int("products", nProducts),
		zap.Int("items", nItems),
	)
	return msg, nil
}
