package exporter

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"rims/core/storage"
	"rims/feature/inventory/models"
	"rims/feature/inventory/sheet"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Exporter renders stored entities as workbooks.
type Exporter struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates an exporter bound to a database handle.
func New(db *gorm.DB, logger *zap.Logger) *Exporter {
	return &Exporter{db: db, logger: logger}
}

// Sites exports every site as a single-sheet workbook.
func (e *Exporter) Sites(ctx context.Context) (*sheet.Workbook, error) {
	var sites []models.Site
	if err := e.db.WithContext(ctx).Order("id").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to load sites for export: %w", err)
	}

	wb := &sheet.Workbook{}
	e.appendSiteSheet(wb, sites)
	return wb, nil
}

// Products exports every product as a single-sheet workbook.
func (e *Exporter) Products(ctx context.Context) (*sheet.Workbook, error) {
	var products []models.ProductInformation
	if err := e.db.WithContext(ctx).Order("code").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products for export: %w", err)
	}

	wb := &sheet.Workbook{}
	e.appendProductSheet(wb, products)
	return wb, nil
}

// Inventory exports the full ledger, every row ever appended, as a
// single-sheet workbook. History is part of the backup contract.
func (e *Exporter) Inventory(ctx context.Context) (*sheet.Workbook, error) {
	var items []models.InventoryItem
	if err := e.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger for export: %w", err)
	}

	wb := &sheet.Workbook{}
	e.appendInventorySheet(wb, items)
	return wb, nil
}

// Backup combines all three entity kinds into one workbook, in the order the
// restore orchestrator imports them.
func (e *Exporter) Backup(ctx context.Context) (*sheet.Workbook, error) {
	var sites []models.Site
	if err := e.db.WithContext(ctx).Order("id").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to load sites for backup: %w", err)
	}
	var products []models.ProductInformation
	if err := e.db.WithContext(ctx).Order("code").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products for backup: %w", err)
	}
	var items []models.InventoryItem
	if err := e.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load ledger for backup: %w", err)
	}

	wb := &sheet.Workbook{}
	e.appendSiteSheet(wb, sites)
	e.appendProductSheet(wb, products)
	e.appendInventorySheet(wb, items)
	return wb, nil
}

// Upload renders a workbook and stores it as an object.
func (e *Exporter) Upload(ctx context.Context, client storage.Client, bucket, objectName string, wb *sheet.Workbook) error {
	data, err := wb.Bytes()
	if err != nil {
		return err
	}
	_, err = client.PutObject(ctx, bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", objectName, err)
	}
	e.logger.Info("Backup uploaded", zap.String("bucket", bucket), zap.String("object", objectName))
	return nil
}

func (e *Exporter) appendSiteSheet(wb *sheet.Workbook, sites []models.Site) {
	s := wb.AddSheet(sheet.SiteSchema.SheetName)
	s.AppendRow(sheet.SiteSchema.Headers()...)
	for _, site := range sites {
		s.AppendRow(
			strconv.FormatUint(uint64(site.ID), 10),
			site.Name,
			site.SiteType,
			site.Region,
			site.Address1,
			site.Address2,
			site.Address3,
			site.ContactName,
			site.ContactPhone,
			site.Notes,
			sheet.FormatTime(site.Modified),
			strconv.Itoa(site.ModifiedMicroseconds),
			site.Modifier,
		)
	}
}

func (e *Exporter) appendProductSheet(wb *sheet.Workbook, products []models.ProductInformation) {
	s := wb.AddSheet(sheet.ProductSchema.SheetName)
	s.AppendRow(sheet.ProductSchema.Headers()...)
	for _, p := range products {
		cost := ""
		if p.CostPerItem.Valid {
			cost = p.CostPerItem.Decimal.StringFixed(2)
		}
		expiration := ""
		if p.ExpirationDate != nil {
			expiration = sheet.FormatDate(*p.ExpirationDate)
		}
		s.AppendRow(
			p.Code,
			p.Name,
			p.UnitOfMeasure,
			strconv.Itoa(p.QuantityOfMeasure),
			cost,
			sheet.FormatBool(p.Expendable),
			strconv.Itoa(p.CartonsPerPallet),
			sheet.FormatBool(p.DoubleStackPallet),
			p.WarehouseLocation,
			sheet.FormatBool(p.CanExpire),
			expiration,
			p.ExpirationNotes,
			sheet.FormatTime(p.Modified),
			strconv.Itoa(p.ModifiedMicroseconds),
			p.Modifier,
		)
	}
}

func (e *Exporter) appendInventorySheet(wb *sheet.Workbook, items []models.InventoryItem) {
	s := wb.AddSheet(sheet.InventorySchema.SheetName)
	s.AppendRow(sheet.InventorySchema.Headers()...)
	for _, it := range items {
		// Every ledger row is a physical inventory transaction, so the
		// prefix column re-imports as accepted.
		s.AppendRow(
			strconv.FormatUint(uint64(it.SiteID), 10),
			it.ProductCode,
			"P",
			strconv.Itoa(it.Quantity),
			sheet.FormatBool(it.Deleted),
			sheet.FormatTime(it.Modified),
			strconv.Itoa(it.ModifiedMicroseconds),
			it.Modifier,
		)
	}
}
