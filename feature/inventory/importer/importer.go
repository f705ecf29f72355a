package importer

import (
	"context"
	"fmt"
	"strings"

	"rims/feature/inventory/models"
	"rims/feature/inventory/sheet"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options controls an import run.
type Options struct {
	// Save persists accepted entities; otherwise they are only returned.
	Save bool
	// RetainModified preserves the modified timestamp, microseconds and
	// modifier columns from the sheet instead of stamping at save time.
	// Restores set this so original audit data survives the round trip.
	RetainModified bool
}

// BadHeaderError reports that no header row was found for the expected key
// column in any sheet of the workbook.
type BadHeaderError struct {
	Kind sheet.Kind
	Key  string
}

func (e *BadHeaderError) Error() string {
	return fmt.Sprintf("no header row with a %q column found for %s import", e.Key, e.Kind)
}

// Importer parses workbooks into entities.
type Importer struct {
	db     *gorm.DB
	logger *zap.Logger
}

// New creates an importer bound to a database handle.
func New(db *gorm.DB, logger *zap.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// WithDB returns a copy of the importer bound to another handle, typically a
// transaction. The restore orchestrator uses this to run all sub-imports
// inside one transaction boundary.
func (imp *Importer) WithDB(db *gorm.DB) *Importer {
	return &Importer{db: db, logger: imp.logger}
}

// columns maps sheet column index -> schema field for one located header row.
type columns map[int]sheet.Field

// locate finds the sheet and header row for a schema. The sheet named by the
// schema is preferred; otherwise every sheet is scanned, so single-sheet
// uploads with arbitrary names still import. The header row is the first row
// containing a cell that matches the key column pattern.
func locate(wb *sheet.Workbook, schema *sheet.Schema) (*sheet.Sheet, int, columns, error) {
	candidates := wb.Sheets
	if named := wb.Sheet(schema.SheetName); named != nil {
		candidates = []*sheet.Sheet{named}
	}

	key := schema.KeyField()
	for _, s := range candidates {
		for rowIdx, row := range s.Rows {
			for _, cell := range row {
				if key.Pattern.MatchString(cell) {
					cols := columns{}
					for colIdx, header := range row {
						if f, ok := schema.MatchHeader(header); ok {
							cols[colIdx] = f
						}
					}
					return s, rowIdx, cols, nil
				}
			}
		}
	}
	return nil, 0, nil, &BadHeaderError{Kind: schema.Kind, Key: key.Header}
}

// rowValues extracts the mapped, non-empty cells of a data row. An empty
// cell is absent; "0" is a present value.
func rowValues(s *sheet.Sheet, rowIdx int, cols columns) map[string]string {
	values := make(map[string]string)
	for colIdx, f := range cols {
		raw := s.Cell(rowIdx, colIdx)
		if raw == "" {
			continue
		}
		values[f.Name] = raw
	}
	return values
}

// audit applies the modified/microseconds/modifier columns of a row to an
// entity's audit triplet. Without RetainModified the triplet is left for
// Stamp to fill at save time. Date parse failures are structural errors.
func applyAudit(a *models.Audit, values map[string]string, modifier string, opts Options) error {
	who := modifier
	if opts.RetainModified {
		if raw, ok := values["modified"]; ok {
			t, err := sheet.ToTime(raw)
			if err != nil {
				return fmt.Errorf("bad modified cell: %w", err)
			}
			a.Modified = t
		}
		if raw, ok := values["microseconds"]; ok {
			us, err := sheet.ToInt(raw)
			if err == nil && us >= 0 && us < 1000000 {
				a.ModifiedMicroseconds = us
			}
		}
		if raw, ok := values["modifier"]; ok {
			who = raw
		}
	}
	a.Stamp(who)
	return nil
}

// ImportSites parses the site sheet of a workbook.
// It returns the accepted sites, a warning message ("" on full success) and
// an error only for structural problems.
func (imp *Importer) ImportSites(ctx context.Context, wb *sheet.Workbook, modifier string, opts Options) ([]models.Site, string, error) {
	s, headerRow, cols, err := locate(wb, sheet.SiteSchema)
	if err != nil {
		return nil, "", err
	}

	var (
		sites    []models.Site
		warnings []string
		seen     = make(map[string]struct{})
		dup      bool
		badRows  int
	)
	for rowIdx := headerRow + 1; rowIdx < len(s.Rows); rowIdx++ {
		values := rowValues(s, rowIdx, cols)
		if len(values) == 0 {
			continue
		}

		site := models.Site{}
		ok := true
		for name, raw := range values {
			switch name {
			case "number":
				v, err := sheet.ToUint(raw)
				if err != nil {
					ok = false
				} else {
					site.ID = v
				}
			case "name":
				site.Name = strings.TrimSpace(raw)
			case "site_type":
				site.SiteType = strings.ToLower(strings.TrimSpace(raw))
			case "region":
				site.Region = strings.TrimSpace(raw)
			case "address1":
				site.Address1 = strings.TrimSpace(raw)
			case "address2":
				site.Address2 = strings.TrimSpace(raw)
			case "address3":
				site.Address3 = strings.TrimSpace(raw)
			case "contact_name":
				site.ContactName = strings.TrimSpace(raw)
			case "contact_phone":
				site.ContactPhone = strings.TrimSpace(raw)
			case "notes":
				site.Notes = raw
			}
		}
		if !ok {
			badRows++
			continue
		}
		if err := applyAudit(&site.Audit, values, modifier, opts); err != nil {
			return nil, "", err
		}

		// Duplicate submissions of the same site number in one batch are
		// reported but both rows are kept; the caller decides.
		if site.ID != 0 {
			key := site.NaturalKey()
			if _, exists := seen[key]; exists {
				dup = true
			}
			seen[key] = struct{}{}
		}
		sites = append(sites, site)
	}

	if dup {
		warnings = append(warnings, "Found duplicate site numbers")
	}
	if badRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d site row(s) with unparseable values", badRows))
	}

	if opts.Save {
		for i := range sites {
			if err := imp.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&sites[i]).Error; err != nil {
				return nil, "", fmt.Errorf("failed to save site %q: %w", sites[i].Name, err)
			}
		}
	}
	return sites, strings.Join(warnings, "\n"), nil
}

// ImportProducts parses the product sheet of a workbook.
func (imp *Importer) ImportProducts(ctx context.Context, wb *sheet.Workbook, modifier string, opts Options) ([]models.ProductInformation, string, error) {
	s, headerRow, cols, err := locate(wb, sheet.ProductSchema)
	if err != nil {
		return nil, "", err
	}

	var (
		products []models.ProductInformation
		warnings []string
		seen     = make(map[string]struct{})
		dup      bool
		badRows  int
	)
	for rowIdx := headerRow + 1; rowIdx < len(s.Rows); rowIdx++ {
		values := rowValues(s, rowIdx, cols)
		if len(values) == 0 {
			continue
		}

		p := models.ProductInformation{UnitOfMeasure: models.UnitEach, QuantityOfMeasure: 1, Expendable: true}
		ok := true
		for name, raw := range values {
			switch name {
			case "code":
				p.Code = raw
			case "name":
				p.Name = strings.TrimSpace(raw)
			case "unit_of_measure":
				p.UnitOfMeasure = strings.ToUpper(strings.TrimSpace(raw))
			case "quantity_of_measure":
				if v, err := sheet.ToInt(raw); err != nil {
					ok = false
				} else {
					p.QuantityOfMeasure = v
				}
			case "cost_per_item":
				if v, err := sheet.ToDecimal(raw); err != nil {
					ok = false
				} else {
					p.CostPerItem = decimal.NullDecimal{Decimal: v, Valid: true}
				}
			case "expendable":
				if v, err := sheet.ToBool(raw); err != nil {
					ok = false
				} else {
					p.Expendable = v
				}
			case "cartons_per_pallet":
				if v, err := sheet.ToInt(raw); err != nil {
					ok = false
				} else {
					p.CartonsPerPallet = v
				}
			case "double_stack_pallets":
				if v, err := sheet.ToBool(raw); err != nil {
					ok = false
				} else {
					p.DoubleStackPallet = v
				}
			case "warehouse_location":
				p.WarehouseLocation = strings.TrimSpace(raw)
			case "can_expire":
				if v, err := sheet.ToBool(raw); err != nil {
					ok = false
				} else {
					p.CanExpire = v
				}
			case "expiration_date":
				t, err := sheet.ToDate(raw)
				if err != nil {
					return nil, "", fmt.Errorf("bad expiration date cell: %w", err)
				}
				p.ExpirationDate = &t
			case "expiration_notes":
				p.ExpirationNotes = raw
			}
		}
		if !ok {
			badRows++
			continue
		}
		if err := applyAudit(&p.Audit, values, modifier, opts); err != nil {
			return nil, "", err
		}

		key := p.NaturalKey()
		if key != "" {
			if _, exists := seen[key]; exists {
				dup = true
			}
			seen[key] = struct{}{}
		}
		products = append(products, p)
	}

	if dup {
		warnings = append(warnings, "Found duplicate product codes")
	}
	if badRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d product row(s) with unparseable values", badRows))
	}

	if opts.Save {
		for i := range products {
			p := &products[i]
			p.NormalizeCode()
			// A product can expire exactly when an expiration date was
			// supplied, regardless of what the sheet's flag column said.
			p.CanExpire = p.ExpirationDate != nil
			if err := imp.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
				return nil, "", fmt.Errorf("failed to save product %q: %w", p.Code, err)
			}
		}
	}
	return products, strings.Join(warnings, "\n"), nil
}

// ImportInventory parses the inventory sheet of a workbook and appends the
// accepted rows to the ledger.
//
// Only rows whose transaction prefix is "P" (physical inventory) are
// accepted; other prefixes are skipped silently. Rows whose site number or
// product code resolves to no stored entity are skipped with a warning, but
// the rows that did resolve are still returned and saved.
func (imp *Importer) ImportInventory(ctx context.Context, wb *sheet.Workbook, modifier string, opts Options) ([]models.InventoryItem, string, error) {
	s, headerRow, cols, err := locate(wb, sheet.InventorySchema)
	if err != nil {
		return nil, "", err
	}

	siteIDs, productCodes, err := imp.loadReferences(ctx)
	if err != nil {
		return nil, "", err
	}

	var (
		items    []models.InventoryItem
		warnings []string
		seen     = make(map[string]struct{})
		dup      bool
		unlinked int
		badRows  int
	)
	for rowIdx := headerRow + 1; rowIdx < len(s.Rows); rowIdx++ {
		values := rowValues(s, rowIdx, cols)
		if len(values) == 0 {
			continue
		}

		// Non-physical transaction types are out of scope for the ledger.
		if prefix, ok := values["prefix"]; ok && !strings.EqualFold(strings.TrimSpace(prefix), "P") {
			continue
		}

		item := models.InventoryItem{}
		ok := true
		for name, raw := range values {
			switch name {
			case "site_number":
				if v, err := sheet.ToUint(raw); err != nil {
					ok = false
				} else {
					item.SiteID = v
				}
			case "product_code":
				item.ProductCode = models.NormalizeProductCode(raw)
			case "quantity":
				if v, err := sheet.ToInt(raw); err != nil {
					ok = false
				} else {
					item.Quantity = v
				}
			case "deleted":
				if v, err := sheet.ToBool(raw); err != nil {
					ok = false
				} else {
					item.Deleted = v
				}
			}
		}
		if !ok {
			badRows++
			continue
		}

		// Both foreign keys must resolve before the row can join the ledger.
		if _, found := siteIDs[item.SiteID]; !found {
			unlinked++
			continue
		}
		if _, found := productCodes[item.ProductCode]; !found {
			unlinked++
			continue
		}

		if err := applyAudit(&item.Audit, values, modifier, opts); err != nil {
			return nil, "", err
		}
		item.Normalize()

		// Retained imports carry original timestamps, so the full natural
		// key applies. Freshly stamped rows all share one import instant;
		// comparing their timestamps would hide real duplicates.
		key := item.NaturalKey()
		if !opts.RetainModified {
			key = fmt.Sprintf("%d|%s|%t|%s", item.SiteID, item.ProductCode, item.Deleted, item.Modifier)
		}
		if _, exists := seen[key]; exists {
			dup = true
		}
		seen[key] = struct{}{}
		items = append(items, item)
	}

	if dup {
		warnings = append(warnings, "Found duplicate inventory items")
	}
	if unlinked > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d inventory item(s) with unknown site or product references", unlinked))
	}
	if badRows > 0 {
		warnings = append(warnings, fmt.Sprintf("Skipped %d inventory row(s) with unparseable values", badRows))
	}

	if opts.Save {
		for i := range items {
			if err := imp.db.WithContext(ctx).Create(&items[i]).Error; err != nil {
				return nil, "", fmt.Errorf("failed to save inventory item: %w", err)
			}
		}
	}
	return items, strings.Join(warnings, "\n"), nil
}

// loadReferences builds lookup sets for foreign-key resolution. One pass up
// front instead of a query per row.
func (imp *Importer) loadReferences(ctx context.Context) (map[uint]struct{}, map[string]struct{}, error) {
	var siteIDs []uint
	if err := imp.db.WithContext(ctx).Model(&models.Site{}).Pluck("id", &siteIDs).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load site references: %w", err)
	}
	var codes []string
	if err := imp.db.WithContext(ctx).Model(&models.ProductInformation{}).Pluck("code", &codes).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to load product references: %w", err)
	}

	sites := make(map[uint]struct{}, len(siteIDs))
	for _, id := range siteIDs {
		sites[id] = struct{}{}
	}
	products := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		products[models.NormalizeProductCode(c)] = struct{}{}
	}
	return sites, products, nil
}
