package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Site types. A delivery site receives shipments, an inventory site stores them.
const (
	SiteTypeDelivery  = "delivery"
	SiteTypeInventory = "inventory"
)

// Units of measure for products.
const (
	UnitBale    = "BALE"
	UnitBox     = "BOX"
	UnitCarton  = "CARTON"
	UnitCase    = "CASE"
	UnitEach    = "EACH"
	UnitPackage = "PACKAGE"
)

// IsValidUnitOfMeasure checks if the given unit is one of the known units.
func IsValidUnitOfMeasure(unit string) bool {
	switch unit {
	case UnitBale, UnitBox, UnitCarton, UnitCase, UnitEach, UnitPackage:
		return true
	default:
		return false
	}
}

// Audit is the shared audit triplet embedded in every entity.
type Audit struct {
	// Modified is the wall-clock time of the last write, second resolution
	// on some backends, so ModifiedMicroseconds carries the tie-break.
	Modified time.Time `gorm:"column:modified;index" json:"modified"`
	// ModifiedMicroseconds is the sub-second component (0-999999) of the
	// write timestamp.
	ModifiedMicroseconds int `gorm:"column:modified_microseconds" json:"modified_microseconds"`
	// Modifier is the identity of the last writer.
	Modifier string `gorm:"column:modifier;size:50" json:"modifier"`
}

// Stamp fills the audit triplet before persistence.
// A pre-set Modified is preserved so restores keep original timestamps;
// otherwise the entity is stamped with a unique write time from UniqueNow.
func (a *Audit) Stamp(modifier string) {
	if a.Modified.IsZero() {
		now := UniqueNow()
		a.Modified = now.Truncate(time.Second)
		a.ModifiedMicroseconds = now.Nanosecond() / 1000
	}
	a.Modifier = modifier
}

// OrderKey returns the composite ordering key as a comparable pair.
func (a Audit) OrderKey() (int64, int) {
	return a.Modified.Unix(), a.ModifiedMicroseconds
}

// Before reports whether this audit timestamp sorts strictly before other.
func (a Audit) Before(other Audit) bool {
	s1, us1 := a.OrderKey()
	s2, us2 := other.OrderKey()
	if s1 != s2 {
		return s1 < s2
	}
	return us1 < us2
}

// Site is a Red Cross location that holds inventory.
type Site struct {
	ID           uint   `gorm:"column:id;primaryKey" json:"id"`
	Name         string `gorm:"column:name;size:50" json:"name"`
	SiteType     string `gorm:"column:site_type;size:20;default:delivery" json:"site_type"`
	Region       string `gorm:"column:region;size:50" json:"region"`
	Address1     string `gorm:"column:address1;size:50" json:"address1"`
	Address2     string `gorm:"column:address2;size:50" json:"address2"`
	Address3     string `gorm:"column:address3;size:50" json:"address3"`
	ContactName  string `gorm:"column:contact_name;size:50" json:"contact_name"`
	ContactPhone string `gorm:"column:contact_phone;size:25" json:"contact_phone"`
	Notes        string `gorm:"column:notes;type:text" json:"notes"`
	Audit

	// Items are the ledger rows recorded at this site. Removing a site
	// removes its ledger.
	Items []InventoryItem `gorm:"foreignKey:SiteID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (Site) TableName() string {
	return "sites"
}

// NaturalKey is the composite used for duplicate detection during import.
// The precise timestamp is excluded; the assigned number identifies the site.
func (s Site) NaturalKey() string {
	return fmt.Sprintf("%d", s.ID)
}

// ProductInformation describes a product type that sites can stock.
type ProductInformation struct {
	// Code is the unique Red Cross product code, trimmed and upper-cased
	// at save time.
	Code              string              `gorm:"column:code;size:10;primaryKey" json:"code"`
	Name              string              `gorm:"column:name;size:50" json:"name"`
	UnitOfMeasure     string              `gorm:"column:unit_of_measure;size:20;default:EACH" json:"unit_of_measure"`
	QuantityOfMeasure int                 `gorm:"column:quantity_of_measure;default:1" json:"quantity_of_measure"`
	CostPerItem       decimal.NullDecimal `gorm:"column:cost_per_item;type:decimal(7,2)" json:"cost_per_item"`
	Expendable        bool                `gorm:"column:expendable;default:true" json:"expendable"`
	CartonsPerPallet  int                 `gorm:"column:cartons_per_pallet" json:"cartons_per_pallet"`
	DoubleStackPallet bool                `gorm:"column:double_stack_pallets" json:"double_stack_pallets"`
	WarehouseLocation string              `gorm:"column:warehouse_location;size:10" json:"warehouse_location"`
	CanExpire         bool                `gorm:"column:can_expire" json:"can_expire"`
	ExpirationDate    *time.Time          `gorm:"column:expiration_date" json:"expiration_date"`
	ExpirationNotes   string              `gorm:"column:expiration_notes;type:text" json:"expiration_notes"`
	Audit

	Items []InventoryItem `gorm:"foreignKey:ProductCode;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the default table name.
func (ProductInformation) TableName() string {
	return "product_information"
}

// NormalizeCode trims and upper-cases the product code. Called at save time
// so lookups and duplicate detection are case-insensitive.
func (p *ProductInformation) NormalizeCode() {
	p.Code = NormalizeProductCode(p.Code)
}

// NaturalKey is the composite used for duplicate detection during import.
func (p ProductInformation) NaturalKey() string {
	return NormalizeProductCode(p.Code)
}

// NormalizeProductCode trims whitespace and upper-cases a raw product code.
func NormalizeProductCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// InventoryItem is one row of the append-only inventory ledger.
//
// An item is never updated once created; a change to the quantity of a
// (site, product) pair is recorded as a new row that supersedes this one by
// its audit timestamp. A row with Deleted set removes the pair from the
// reconciled inventory until a later row re-adds it.
type InventoryItem struct {
	ID          uint   `gorm:"column:id;primaryKey" json:"id"`
	SiteID      uint   `gorm:"column:site_id;not null;index" json:"site_id"`
	ProductCode string `gorm:"column:product_code;size:10;not null;index" json:"product_code"`
	Quantity    int    `gorm:"column:quantity" json:"quantity"`
	Deleted     bool   `gorm:"column:deleted" json:"deleted"`
	Audit

	Site    Site               `gorm:"foreignKey:SiteID" json:"-"`
	Product ProductInformation `gorm:"foreignKey:ProductCode;references:Code" json:"-"`
}

// TableName overrides the default table name.
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// Normalize enforces ledger invariants: a deletion marker carries no
// quantity, and the product code is stored in canonical form.
func (i *InventoryItem) Normalize() {
	i.ProductCode = NormalizeProductCode(i.ProductCode)
	if i.Deleted {
		i.Quantity = 0
	}
}

// NaturalKey is the composite used for duplicate detection during import.
// It excludes the primary key and the microsecond component, so two rows
// describing the same change in the same second are considered duplicates.
func (i InventoryItem) NaturalKey() string {
	return fmt.Sprintf("%d|%s|%t|%d|%s",
		i.SiteID, NormalizeProductCode(i.ProductCode), i.Deleted, i.Modified.Unix(), i.Modifier)
}
