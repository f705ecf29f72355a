package inventory

import (
	"context"
	"fmt"
	"time"

	"rims/core/audit"
	"rims/core/database"
	"rims/core/storage"
	"rims/feature/inventory/exporter"
	"rims/feature/inventory/importer"
	"rims/feature/inventory/ledger"
	"rims/feature/inventory/models"
	"rims/feature/inventory/restore"
	"rims/feature/inventory/sheet"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service bundles the inventory engines behind one facade.
type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	engine   *ledger.Engine
	importer *importer.Importer
	exporter *exporter.Exporter
	restorer *restore.Orchestrator
	store    storage.Client
	storeCfg storage.Config
}

// NewService creates the inventory service. The storage client may be nil
// when no object storage is configured; backups then stay local.
func NewService(db *gorm.DB, logger *zap.Logger, store storage.Client, storeCfg storage.Config, auditLog *audit.Logger, ledgerCfg ledger.Config) *Service {
	imp := importer.New(db, logger)
	return &Service{
		db:       db,
		logger:   logger,
		engine:   ledger.New(db, logger, ledgerCfg),
		importer: imp,
		exporter: exporter.New(db, logger),
		restorer: restore.New(db, imp, auditLog, logger),
		store:    store,
		storeCfg: storeCfg,
	}
}

// Migrate creates or updates the inventory tables.
func (s *Service) Migrate() error {
	return s.db.AutoMigrate(
		&models.Site{},
		&models.ProductInformation{},
		&models.InventoryItem{},
	)
}

// Sites returns all sites ordered by name.
func (s *Service) Sites(ctx context.Context) ([]models.Site, error) {
	var sites []models.Site
	if err := s.db.WithContext(ctx).Order("name").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// Site returns one site by number.
func (s *Service) Site(ctx context.Context, id uint) (*models.Site, error) {
	var site models.Site
	if err := s.db.WithContext(ctx).First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// SaveSite creates or updates a site, restamping the audit triplet.
func (s *Service) SaveSite(ctx context.Context, site *models.Site, modifier string) error {
	site.Modified = time.Time{}
	site.ModifiedMicroseconds = 0
	site.Stamp(modifier)
	if err := s.db.WithContext(ctx).Save(site).Error; err != nil {
		return fmt.Errorf("failed to save site %q: %w", site.Name, err)
	}
	return nil
}

// DeleteSite removes a site and cascades to its ledger rows.
func (s *Service) DeleteSite(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("site_id = ?", id).Delete(&models.InventoryItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Site{}, id).Error
	})
}

// Products returns all products ordered by name.
func (s *Service) Products(ctx context.Context) ([]models.ProductInformation, error) {
	var products []models.ProductInformation
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Product returns one product by code.
func (s *Service) Product(ctx context.Context, code string) (*models.ProductInformation, error) {
	var p models.ProductInformation
	if err := s.db.WithContext(ctx).First(&p, "code = ?", models.NormalizeProductCode(code)).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProduct creates or updates a product, normalizing the code and
// restamping the audit triplet.
func (s *Service) SaveProduct(ctx context.Context, p *models.ProductInformation, modifier string) error {
	p.NormalizeCode()
	p.CanExpire = p.ExpirationDate != nil
	p.Modified = time.Time{}
	p.ModifiedMicroseconds = 0
	p.Stamp(modifier)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to save product %q: %w", p.Code, err)
	}
	return nil
}

// DeleteProduct removes a product and cascades to its ledger rows.
func (s *Service) DeleteProduct(ctx context.Context, code string) error {
	code = models.NormalizeProductCode(code)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_code = ?", code).Delete(&models.InventoryItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ProductInformation{}, "code = ?", code).Error
	})
}

// AddInventory appends a new ledger row for a (site, product) pair. This is
// the only write path for inventory: existing rows are never touched, so
// concurrent writers cannot contend.
func (s *Service) AddInventory(ctx context.Context, siteID uint, code string, quantity int, deleted bool, modifier string) (*models.InventoryItem, error) {
	code = models.NormalizeProductCode(code)
	if err := s.db.WithContext(ctx).First(&models.Site{}, siteID).Error; err != nil {
		return nil, fmt.Errorf("unknown site %d: %w", siteID, err)
	}
	if err := s.db.WithContext(ctx).First(&models.ProductInformation{}, "code = ?", code).Error; err != nil {
		return nil, fmt.Errorf("unknown product %s: %w", code, err)
	}

	item := models.InventoryItem{
		SiteID:      siteID,
		ProductCode: code,
		Quantity:    quantity,
		Deleted:     deleted,
	}
	item.Normalize()
	item.Stamp(modifier)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to append inventory item: %w", err)
	}
	return &item, nil
}

// Ledger exposes the reconciliation engine.
func (s *Service) Ledger() *ledger.Engine {
	return s.engine
}

// Import runs a tabular import for one kind and reports how many entities
// were accepted alongside the warning message.
func (s *Service) Import(ctx context.Context, kind sheet.Kind, wb *sheet.Workbook, modifier string, opts importer.Options) (int, string, error) {
	switch kind {
	case sheet.KindSite:
		sites, warning, err := s.importer.ImportSites(ctx, wb, modifier, opts)
		return len(sites), warning, err
	case sheet.KindProduct:
		products, warning, err := s.importer.ImportProducts(ctx, wb, modifier, opts)
		return len(products), warning, err
	default:
		items, warning, err := s.importer.ImportInventory(ctx, wb, modifier, opts)
		return len(items), warning, err
	}
}

// Export renders one kind as a workbook.
func (s *Service) Export(ctx context.Context, kind sheet.Kind) (*sheet.Workbook, error) {
	switch kind {
	case sheet.KindSite:
		return s.exporter.Sites(ctx)
	case sheet.KindProduct:
		return s.exporter.Products(ctx)
	default:
		return s.exporter.Inventory(ctx)
	}
}

// Backup builds the combined three-sheet workbook. When object storage is
// configured the artifact is uploaded and the object name returned.
func (s *Service) Backup(ctx context.Context) (*sheet.Workbook, string, error) {
	wb, err := s.exporter.Backup(ctx)
	if err != nil {
		return nil, "", err
	}
	if s.store == nil {
		return wb, "", nil
	}

	objectName := fmt.Sprintf("%s/rims-backup-%s-%s.xlsx",
		s.storeCfg.Prefix, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	if err := s.exporter.Upload(ctx, s.store, s.storeCfg.Bucket, objectName, wb); err != nil {
		return nil, "", err
	}
	return wb, objectName, nil
}

// Restore runs the all-or-nothing restore after verifying the schema is in
// place, so a misconfigured database fails before anything is deleted.
func (s *Service) Restore(ctx context.Context, wb *sheet.Workbook, actor string, caps restore.Capabilities) (string, error) {
	err := database.VerifyTables(s.db,
		models.Site{}.TableName(),
		models.ProductInformation{}.TableName(),
		models.InventoryItem{}.TableName(),
	)
	if err != nil {
		return "", fmt.Errorf("restore preflight failed: %w", err)
	}
	return s.restorer.Restore(ctx, wb, actor, caps)
}
