package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHeader_Sites(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Site Number", "number"},
		{"SITE NUMBER", "number"},
		{"Site number ", "number"},
		{"Site Name", "name"},
		{"Address 1", "address1"},
		{"Contact Phone", "contact_phone"},
		{"Modified", "modified"},
		{"Microseconds", "microseconds"},
		{"Modifier", "modifier"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			f, ok := SiteSchema.MatchHeader(tt.header)
			assert.True(t, ok)
			assert.Equal(t, tt.want, f.Name)
		})
	}

	_, ok := SiteSchema.MatchHeader("Favorite Color")
	assert.False(t, ok, "unknown headers must be ignored")
}

func TestMatchHeader_InventoryQuantityAliases(t *testing.T) {
	// Legacy sheets label the quantity column "Cartons".
	for _, header := range []string{"Cartons", "Quantity", "quantity"} {
		f, ok := InventorySchema.MatchHeader(header)
		assert.True(t, ok, header)
		assert.Equal(t, "quantity", f.Name)
	}
}

// Every exported header must be recognized by its own schema, otherwise
// exported workbooks would not survive re-import.
func TestHeaders_RoundTrip(t *testing.T) {
	for _, schema := range []*Schema{SiteSchema, ProductSchema, InventorySchema} {
		for _, f := range schema.Fields {
			got, ok := schema.MatchHeader(f.Header)
			assert.True(t, ok, "%s header %q not recognized", schema.SheetName, f.Header)
			assert.Equal(t, f.Name, got.Name, "%s header %q matched the wrong field", schema.SheetName, f.Header)
		}
	}
}

func TestKeyField(t *testing.T) {
	assert.Equal(t, "number", SiteSchema.KeyField().Name)
	assert.Equal(t, "code", ProductSchema.KeyField().Name)
	assert.Equal(t, "site_number", InventorySchema.KeyField().Name)
}

func TestSchemaFor(t *testing.T) {
	assert.Same(t, SiteSchema, SchemaFor(KindSite))
	assert.Same(t, ProductSchema, SchemaFor(KindProduct))
	assert.Same(t, InventorySchema, SchemaFor(KindInventory))
}

func TestLinkOnlyFields(t *testing.T) {
	linkOnly := map[string]bool{}
	for _, f := range InventorySchema.Fields {
		linkOnly[f.Name] = f.LinkOnly
	}
	assert.True(t, linkOnly["site_number"])
	assert.True(t, linkOnly["product_code"])
	assert.True(t, linkOnly["prefix"])
	assert.False(t, linkOnly["quantity"])
}
