package sheet

import "regexp"

// Kind selects which entity schema applies to a sheet.
type Kind int

const (
	KindSite Kind = iota
	KindProduct
	KindInventory
)

// String returns the human-readable kind name used in messages.
func (k Kind) String() string {
	switch k {
	case KindSite:
		return "site"
	case KindProduct:
		return "product"
	case KindInventory:
		return "inventory item"
	default:
		return "unknown"
	}
}

// FieldType drives value coercion for a column. The target field's declared
// type decides how a cell is parsed, regardless of the source cell.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeUint
	TypeBool
	TypeDecimal
	TypeDate // calendar date, no time component
	TypeTime // full timestamp
)

// Field maps a header pattern to a canonical field name.
type Field struct {
	// Name is the canonical field name the importer assigns to.
	Name string
	// Header is the exact header text the exporter writes. It must satisfy
	// Pattern so exported sheets round-trip through the importer.
	Header string
	// Pattern recognizes the column header, case-insensitively.
	Pattern *regexp.Regexp
	// Type selects the coercion applied to cell values.
	Type FieldType
	// LinkOnly fields are captured for foreign-key resolution or row
	// filtering and are not persisted on the entity itself.
	LinkOnly bool
}

// Schema is the static column table for one entity kind.
type Schema struct {
	Kind Kind
	// SheetName is the sheet the exporter writes and the backup/restore
	// pipeline looks for.
	SheetName string
	// Key is the canonical name of the field whose header identifies the
	// header row when scanning a sheet.
	Key string
	// Fields in declaration order; the first matching pattern wins.
	Fields []Field
}

// MatchHeader maps raw header text to a schema field. Unrecognized headers
// return ok=false and are ignored by the importer.
func (s *Schema) MatchHeader(header string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Pattern.MatchString(header) {
			return f, true
		}
	}
	return Field{}, false
}

// KeyField returns the field named by Key.
func (s *Schema) KeyField() Field {
	for _, f := range s.Fields {
		if f.Name == s.Key {
			return f
		}
	}
	return Field{}
}

// Headers returns the export header row in declaration order.
func (s *Schema) Headers() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Header
	}
	return out
}

// SiteSchema describes the Sites sheet.
var SiteSchema = &Schema{
	Kind:      KindSite,
	SheetName: "Sites",
	Key:       "number",
	Fields: []Field{
		{Name: "number", Header: "Site Number", Pattern: regexp.MustCompile(`(?i)site.*number`), Type: TypeUint},
		{Name: "name", Header: "Site Name", Pattern: regexp.MustCompile(`(?i)site.*name`), Type: TypeString},
		{Name: "site_type", Header: "Site Type", Pattern: regexp.MustCompile(`(?i)site.*type`), Type: TypeString},
		{Name: "region", Header: "Region", Pattern: regexp.MustCompile(`(?i)region`), Type: TypeString},
		{Name: "address1", Header: "Address 1", Pattern: regexp.MustCompile(`(?i)address.*1`), Type: TypeString},
		{Name: "address2", Header: "Address 2", Pattern: regexp.MustCompile(`(?i)address.*2`), Type: TypeString},
		{Name: "address3", Header: "Address 3", Pattern: regexp.MustCompile(`(?i)address.*3`), Type: TypeString},
		{Name: "contact_name", Header: "Contact Name", Pattern: regexp.MustCompile(`(?i)contact.*name`), Type: TypeString},
		{Name: "contact_phone", Header: "Contact Phone", Pattern: regexp.MustCompile(`(?i)contact.*phone`), Type: TypeString},
		{Name: "notes", Header: "Notes", Pattern: regexp.MustCompile(`(?i)^notes`), Type: TypeString},
		{Name: "modified", Header: "Modified", Pattern: regexp.MustCompile(`(?i)^modified$`), Type: TypeTime},
		{Name: "microseconds", Header: "Microseconds", Pattern: regexp.MustCompile(`(?i)microseconds`), Type: TypeInt},
		{Name: "modifier", Header: "Modifier", Pattern: regexp.MustCompile(`(?i)^modifier$`), Type: TypeString},
	},
}

// ProductSchema describes the Products sheet.
var ProductSchema = &Schema{
	Kind:      KindProduct,
	SheetName: "Products",
	Key:       "code",
	Fields: []Field{
		{Name: "code", Header: "Product Code", Pattern: regexp.MustCompile(`(?i)product.*code|^code$`), Type: TypeString},
		{Name: "name", Header: "Product Name", Pattern: regexp.MustCompile(`(?i)product.*name`), Type: TypeString},
		{Name: "unit_of_measure", Header: "Unit of Measure", Pattern: regexp.MustCompile(`(?i)unit.*of.*measure|^unit$`), Type: TypeString},
		{Name: "quantity_of_measure", Header: "Quantity of Measure", Pattern: regexp.MustCompile(`(?i)quantity.*of.*measure`), Type: TypeInt},
		{Name: "cost_per_item", Header: "Cost Per Item", Pattern: regexp.MustCompile(`(?i)cost.*per.*item|^cost$`), Type: TypeDecimal},
		{Name: "expendable", Header: "Expendable", Pattern: regexp.MustCompile(`(?i)expendable`), Type: TypeBool},
		{Name: "cartons_per_pallet", Header: "Cartons Per Pallet", Pattern: regexp.MustCompile(`(?i)cartons.*per.*pallet`), Type: TypeInt},
		{Name: "double_stack_pallets", Header: "Double Stack Pallets", Pattern: regexp.MustCompile(`(?i)double.*stack`), Type: TypeBool},
		{Name: "warehouse_location", Header: "Warehouse Location", Pattern: regexp.MustCompile(`(?i)warehouse.*location`), Type: TypeString},
		{Name: "can_expire", Header: "Can Expire", Pattern: regexp.MustCompile(`(?i)can.*expire`), Type: TypeBool},
		{Name: "expiration_date", Header: "Expiration Date", Pattern: regexp.MustCompile(`(?i)expiration.*date`), Type: TypeDate},
		{Name: "expiration_notes", Header: "Expiration Notes", Pattern: regexp.MustCompile(`(?i)expiration.*notes`), Type: TypeString},
		{Name: "modified", Header: "Modified", Pattern: regexp.MustCompile(`(?i)^modified$`), Type: TypeTime},
		{Name: "microseconds", Header: "Microseconds", Pattern: regexp.MustCompile(`(?i)microseconds`), Type: TypeInt},
		{Name: "modifier", Header: "Modifier", Pattern: regexp.MustCompile(`(?i)^modifier$`), Type: TypeString},
	},
}

// InventorySchema describes the Inventory sheet. Site number, product code
// and the transaction prefix are link-only: they drive foreign-key resolution
// and row filtering, and are not fields on the stored entity.
var InventorySchema = &Schema{
	Kind:      KindInventory,
	SheetName: "Inventory",
	Key:       "site_number",
	Fields: []Field{
		{Name: "site_number", Header: "Site Number", Pattern: regexp.MustCompile(`(?i)site.*number`), Type: TypeUint, LinkOnly: true},
		{Name: "product_code", Header: "Product Code", Pattern: regexp.MustCompile(`(?i)product.*code`), Type: TypeString, LinkOnly: true},
		{Name: "prefix", Header: "Prefix", Pattern: regexp.MustCompile(`(?i)prefix`), Type: TypeString, LinkOnly: true},
		{Name: "quantity", Header: "Cartons", Pattern: regexp.MustCompile(`(?i)cartons|quantity`), Type: TypeInt},
		{Name: "deleted", Header: "Deleted", Pattern: regexp.MustCompile(`(?i)deleted`), Type: TypeBool},
		{Name: "modified", Header: "Modified", Pattern: regexp.MustCompile(`(?i)^modified$`), Type: TypeTime},
		{Name: "microseconds", Header: "Microseconds", Pattern: regexp.MustCompile(`(?i)microseconds`), Type: TypeInt},
		{Name: "modifier", Header: "Modifier", Pattern: regexp.MustCompile(`(?i)^modifier$`), Type: TypeString},
	},
}

// SchemaFor returns the schema for a kind.
func SchemaFor(kind Kind) *Schema {
	switch kind {
	case KindSite:
		return SiteSchema
	case KindProduct:
		return ProductSchema
	default:
		return InventorySchema
	}
}
