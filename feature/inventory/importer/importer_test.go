package importer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"rims/core/database"
	"rims/feature/inventory/importer"
	"rims/feature/inventory/models"
	"rims/feature/inventory/sheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T, name string) *gorm.DB {
	db, err := database.Connect(database.Config{
		Driver: "sqlite",
		Name:   fmt.Sprintf("file:imp_%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Site{}, &models.ProductInformation{}, &models.InventoryItem{})
	require.NoError(t, err)
	return db
}

func newImporter(db *gorm.DB) *importer.Importer {
	return importer.New(db, zap.NewNop())
}

func siteWorkbook(rows ...[]string) *sheet.Workbook {
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Sites")
	s.AppendRow("Site Number", "Site Name", "Site Type", "Region", "Address 1", "Address 2", "Address 3", "Contact Name", "Contact Phone", "Notes", "Modified", "Microseconds", "Modifier")
	for _, row := range rows {
		s.AppendRow(row...)
	}
	return wb
}

func inventoryWorkbook(rows ...[]string) *sheet.Workbook {
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Inventory")
	s.AppendRow("Site Number", "Product Code", "Prefix", "Cartons", "Deleted", "Modified", "Microseconds", "Modifier")
	for _, row := range rows {
		s.AppendRow(row...)
	}
	return wb
}

func TestImportSites(t *testing.T) {
	db := setupDB(t, "sites")
	wb := siteWorkbook(
		[]string{"41", "Pacific Service Center", "inventory", "West"},
		[]string{"52", "Akron Chapter", "delivery", "Midwest"},
		[]string{"63", "Zanesville Warehouse"},
	)

	sites, warning, err := newImporter(db).ImportSites(context.Background(), wb, "tester", importer.Options{Save: true})
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, sites, 3)

	assert.Equal(t, uint(41), sites[0].ID)
	assert.Equal(t, "Pacific Service Center", sites[0].Name)
	assert.Equal(t, "inventory", sites[0].SiteType)
	assert.Equal(t, "tester", sites[0].Modifier)
	assert.False(t, sites[0].Modified.IsZero())

	var count int64
	db.Model(&models.Site{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestImportSites_DuplicateNumbers(t *testing.T) {
	db := setupDB(t, "sites_dup")
	wb := siteWorkbook(
		[]string{"41", "Pacific Service Center"},
		[]string{"52", "Akron Chapter"},
		[]string{"41", "Pacific Service Center Again"},
	)

	sites, warning, err := newImporter(db).ImportSites(context.Background(), wb, "tester", importer.Options{Save: true})
	require.NoError(t, err)
	assert.Contains(t, warning, "duplicate site numbers")
	assert.Len(t, sites, 3, "duplicate rows are reported, not dropped")

	// Upsert semantics: the later row wins in storage.
	var count int64
	db.Model(&models.Site{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestImportSites_UnparseableNumber(t *testing.T) {
	db := setupDB(t, "sites_bad")
	wb := siteWorkbook(
		[]string{"41", "Pacific Service Center"},
		[]string{"not-a-number", "Broken Row"},
	)

	sites, warning, err := newImporter(db).ImportSites(context.Background(), wb, "tester", importer.Options{Save: false})
	require.NoError(t, err)
	assert.Contains(t, warning, "Skipped 1 site row(s)")
	assert.Len(t, sites, 1)
}

func TestImportSites_BadHeader(t *testing.T) {
	db := setupDB(t, "sites_header")
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Sites")
	s.AppendRow("Color", "Shape")
	s.AppendRow("red", "round")

	_, _, err := newImporter(db).ImportSites(context.Background(), wb, "tester", importer.Options{Save: false})
	var bad *importer.BadHeaderError
	require.ErrorAs(t, err, &bad)
}

func TestImportSites_AnySheetName(t *testing.T) {
	db := setupDB(t, "sites_anyname")
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Export 2024")
	s.AppendRow("Site Number", "Site Name")
	s.AppendRow("41", "Pacific Service Center")

	sites, _, err := newImporter(db).ImportSites(context.Background(), wb, "tester", importer.Options{Save: false})
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Pacific Service Center", sites[0].Name)
}

func TestImportProducts_Defaults(t *testing.T) {
	db := setupDB(t, "products")
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Products")
	s.AppendRow("Product Code", "Product Name", "Unit of Measure", "Quantity of Measure", "Cost Per Item", "Expiration Date")
	s.AppendRow(" blk ", "Blankets", "CARTON", "10", "12.50", "")
	s.AppendRow("TWL", "Towels", "", "", "", "2026-01-31")

	products, warning, err := newImporter(db).ImportProducts(context.Background(), wb, "tester", importer.Options{Save: true})
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, products, 2)

	assert.Equal(t, "CARTON", products[0].UnitOfMeasure)
	assert.Equal(t, 10, products[0].QuantityOfMeasure)
	assert.True(t, products[0].CostPerItem.Valid)
	assert.Equal(t, "12.50", products[0].CostPerItem.Decimal.StringFixed(2))

	// Absent cells fall back to defaults.
	assert.Equal(t, models.UnitEach, products[1].UnitOfMeasure)
	assert.Equal(t, 1, products[1].QuantityOfMeasure)
	assert.True(t, products[1].Expendable)

	var stored models.ProductInformation
	require.NoError(t, db.First(&stored, "code = ?", "BLK").Error)
	assert.Equal(t, "Blankets", stored.Name, "codes are normalized at save time")
	assert.False(t, stored.CanExpire)

	stored = models.ProductInformation{}
	require.NoError(t, db.First(&stored, "code = ?", "TWL").Error)
	assert.True(t, stored.CanExpire, "a supplied expiration date makes the product expirable")
	require.NotNil(t, stored.ExpirationDate)
}

func TestImportProducts_DuplicateCodes(t *testing.T) {
	db := setupDB(t, "products_dup")
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Products")
	s.AppendRow("Product Code", "Product Name")
	s.AppendRow("BLK", "Blankets")
	s.AppendRow("blk", "Blankets, duplicated")

	_, warning, err := newImporter(db).ImportProducts(context.Background(), wb, "tester", importer.Options{Save: false})
	require.NoError(t, err)
	assert.Contains(t, warning, "duplicate product codes")
}

func TestImportProducts_BadExpirationDateIsStructural(t *testing.T) {
	db := setupDB(t, "products_baddate")
	wb := &sheet.Workbook{}
	s := wb.AddSheet("Products")
	s.AppendRow("Product Code", "Expiration Date")
	s.AppendRow("BLK", "whenever")

	_, _, err := newImporter(db).ImportProducts(context.Background(), wb, "tester", importer.Options{Save: false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expiration date")
}

func seedReferences(t *testing.T, db *gorm.DB) {
	site := models.Site{ID: 41, Name: "Pacific Service Center"}
	site.Stamp("test")
	require.NoError(t, db.Create(&site).Error)

	p := models.ProductInformation{Code: "BLK", Name: "Blankets"}
	p.Stamp("test")
	require.NoError(t, db.Create(&p).Error)
}

func TestImportInventory(t *testing.T) {
	db := setupDB(t, "inventory")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5"},
		[]string{"41", "blk", "P", "0"},
	)

	items, warning, err := newImporter(db).ImportInventory(context.Background(), wb, "tester", importer.Options{Save: true})
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.Len(t, items, 2)

	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, 0, items[1].Quantity, "a written zero is a real quantity")
	assert.Equal(t, "BLK", items[1].ProductCode)

	var count int64
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestImportInventory_PrefixFilter(t *testing.T) {
	db := setupDB(t, "inventory_prefix")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5"},
		[]string{"41", "BLK", "D", "7"},
		[]string{"41", "BLK", "R", "9"},
	)

	items, warning, err := newImporter(db).ImportInventory(context.Background(), wb, "tester", importer.Options{Save: false})
	require.NoError(t, err)
	assert.Empty(t, warning, "non-physical rows are skipped silently, not warned about")
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestImportInventory_UnresolvedReferences(t *testing.T) {
	db := setupDB(t, "inventory_unlinked")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5"},
		[]string{"99", "BLK", "P", "7"},
		[]string{"41", "XXX", "P", "9"},
	)

	items, warning, err := newImporter(db).ImportInventory(context.Background(), wb, "tester", importer.Options{Save: true})
	require.NoError(t, err)
	assert.Contains(t, warning, "Skipped 2 inventory item(s) with unknown site or product references")
	require.Len(t, items, 1, "resolvable rows still import")

	var count int64
	db.Model(&models.InventoryItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestImportInventory_RetainModified(t *testing.T) {
	db := setupDB(t, "inventory_retain")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5", "0", "2019-06-01T12:00:00Z", "123456", "original-user"},
	)

	items, _, err := newImporter(db).ImportInventory(context.Background(), wb, "restorer", importer.Options{Save: false, RetainModified: true})
	require.NoError(t, err)
	require.Len(t, items, 1)

	want := time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, items[0].Modified.Equal(want))
	assert.Equal(t, 123456, items[0].ModifiedMicroseconds)
	assert.Equal(t, "original-user", items[0].Modifier, "the sheet's modifier survives a retained import")
}

func TestImportInventory_FreshStampWithoutRetain(t *testing.T) {
	db := setupDB(t, "inventory_fresh")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5", "0", "2019-06-01T12:00:00Z", "123456", "original-user"},
	)

	before := time.Now().Add(-time.Second)
	items, _, err := newImporter(db).ImportInventory(context.Background(), wb, "web", importer.Options{Save: false})
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.True(t, items[0].Modified.After(before), "without RetainModified the row is stamped now")
	assert.Equal(t, "web", items[0].Modifier)
}

func TestImportInventory_DuplicateRows(t *testing.T) {
	db := setupDB(t, "inventory_dup")
	seedReferences(t, db)

	wb := inventoryWorkbook(
		[]string{"41", "BLK", "P", "5"},
		[]string{"41", "BLK", "P", "5"},
	)

	_, warning, err := newImporter(db).ImportInventory(context.Background(), wb, "tester", importer.Options{Save: false})
	require.NoError(t, err)
	assert.Contains(t, warning, "duplicate inventory items")
}
