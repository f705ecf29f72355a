// Package importer turns tabular workbook data into stored entities.
//
// Imports degrade gracefully: data-quality problems (duplicate keys in a
// batch, rows referencing unknown sites or products, unparseable numeric
// cells) are collected into a warning string and never abort the batch.
// Only structural problems are errors: an unreadable workbook, a sheet with
// no recognizable header row, or an unparseable date cell.
//
// Accepted rows are returned and, when requested, persisted; rejected rows
// are counted in the warning. A cell holding 0 is a present value, never a
// missing one.
package importer
