// Package inventory is the warehouse inventory feature.
//
// It wires the ledger reconciliation engine, the tabular import/export
// pipeline and the restore orchestrator behind a Service facade, and exposes
// them over HTTP. Authorization is an external concern: the API layer in
// front of these routes decides who may call them, the feature only consumes
// the resulting capability flags and modifier identity.
package inventory
