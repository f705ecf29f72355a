package exporter_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rims/core/database"
	"rims/core/storage/mocks"
	"rims/feature/inventory/exporter"
	"rims/feature/inventory/importer"
	"rims/feature/inventory/models"
	"rims/feature/inventory/sheet"

	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T, name string) *gorm.DB {
	db, err := database.Connect(database.Config{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:exp_%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Site{}, &models.ProductInformation{}, &models.InventoryItem{})
	require.NoError(t, err)
	return db
}

func seedAll(t *testing.T, db *gorm.DB) {
	modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	site := models.Site{ID: 41, Name: "Pacific Service Center", SiteType: models.SiteTypeInventory, Region: "West"}
	site.Modified = modified
	site.ModifiedMicroseconds = 111
	site.Modifier = "seed"
	require.NoError(t, db.Create(&site).Error)

	p := models.ProductInformation{
		Code:              "BLK",
		Name:              "Blankets",
		UnitOfMeasure:     models.UnitCarton,
		QuantityOfMeasure: 10,
		CostPerItem:       decimal.NullDecimal{Decimal: decimal.RequireFromString("12.50"), Valid: true},
		Expendable:        true,
	}
	p.Modified = modified
	p.ModifiedMicroseconds = 222
	p.Modifier = "seed"
	require.NoError(t, db.Create(&p).Error)

	for i, qty := range []int{5, 0, 8} {
		item := models.InventoryItem{SiteID: 41, ProductCode: "BLK", Quantity: qty, Deleted: qty == 0}
		item.Normalize()
		item.Modified = modified.Add(time.Duration(i) * time.Minute)
		item.Modifier = "seed"
		require.NoError(t, db.Create(&item).Error)
	}
}

func TestExportSites(t *testing.T) {
	db := setupDB(t, "sites")
	seedAll(t, db)

	wb, err := exporter.New(db, zap.NewNop()).Sites(context.Background())
	require.NoError(t, err)

	s := wb.Sheet("Sites")
	require.NotNil(t, s)
	require.Len(t, s.Rows, 2, "header plus one site")
	assert.Equal(t, sheet.SiteSchema.Headers(), s.Rows[0])
	assert.Equal(t, "41", s.Cell(1, 0))
	assert.Equal(t, "Pacific Service Center", s.Cell(1, 1))
	assert.Equal(t, "111", s.Cell(1, 11))
}

func TestExportInventory_FullLedger(t *testing.T) {
	db := setupDB(t, "inventory")
	seedAll(t, db)

	wb, err := exporter.New(db, zap.NewNop()).Inventory(context.Background())
	require.NoError(t, err)

	s := wb.Sheet("Inventory")
	require.NotNil(t, s)
	require.Len(t, s.Rows, 4, "every ledger row is exported, superseded and deleted ones included")

	assert.Equal(t, "P", s.Cell(1, 2), "exported rows carry the physical prefix")
	assert.Equal(t, "0", s.Cell(2, 3), "zero quantities are written, not blanked")
	assert.Equal(t, "1", s.Cell(2, 4))
}

// A backup must survive a round trip through the importer with nothing lost.
func TestBackup_RoundTrip(t *testing.T) {
	src := setupDB(t, "roundtrip_src")
	seedAll(t, src)

	wb, err := exporter.New(src, zap.NewNop()).Backup(context.Background())
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 3)

	dst := setupDB(t, "roundtrip_dst")
	imp := importer.New(dst, zap.NewNop())
	opts := importer.Options{Save: true, RetainModified: true}
	ctx := context.Background()

	sites, warning, err := imp.ImportSites(ctx, wb, "restore", opts)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, sites, 1)

	products, warning, err := imp.ImportProducts(ctx, wb, "restore", opts)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, products, 1)

	items, warning, err := imp.ImportInventory(ctx, wb, "restore", opts)
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, items, 3)

	var site models.Site
	require.NoError(t, dst.First(&site, 41).Error)
	assert.Equal(t, "Pacific Service Center", site.Name)
	assert.Equal(t, 111, site.ModifiedMicroseconds)
	assert.Equal(t, "seed", site.Modifier)

	var p models.ProductInformation
	require.NoError(t, dst.First(&p, "code = ?", "BLK").Error)
	assert.Equal(t, 10, p.QuantityOfMeasure)
	assert.Equal(t, "12.50", p.CostPerItem.Decimal.StringFixed(2))

	var deletedCount int64
	dst.Model(&models.InventoryItem{}).Where("deleted = ?", true).Count(&deletedCount)
	assert.Equal(t, int64(1), deletedCount, "deletion markers survive the round trip")
}

func TestUpload(t *testing.T) {
	db := setupDB(t, "upload")
	seedAll(t, db)

	e := exporter.New(db, zap.NewNop())
	wb, err := e.Backup(context.Background())
	require.NoError(t, err)

	mockClient := new(mocks.Client)
	mockClient.On("PutObject", mock.Anything, "rims-backups", "backups/test.xlsx", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)

	err = e.Upload(context.Background(), mockClient, "rims-backups", "backups/test.xlsx", wb)
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}
