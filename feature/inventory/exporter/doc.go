// Package exporter serializes entities back into the tabular layout the
// importer accepts.
//
// Exported headers are the exact texts the import schemas recognize, so an
// exported workbook re-imports cleanly: import(export(X)) reproduces X up to
// the auto-assigned primary key and the sub-second timestamp component.
// Backup combines all three entity sheets into one workbook, the artifact
// the restore orchestrator consumes, and can push it to object storage.
package exporter
