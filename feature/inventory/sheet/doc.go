// Package sheet provides the tabular data model shared by the import and
// export engines, plus the xlsx codec that backs it.
//
// A Workbook is a list of named Sheets; a Sheet is a rectangular grid of
// string cells. An empty string is an absent cell; "0" is a present cell
// holding zero. The two must never be conflated: a quantity cell of 0 is
// meaningful data.
//
// # Schemas
//
// Each entity kind carries a static Schema: an ordered table mapping
// case-insensitive header patterns to canonical field names and coercion
// types. Column order in a source workbook is arbitrary; the schema decides
// what each column means. Coercion is driven by the declared target type of
// the field, never by the source cell.
package sheet
