// Package ledger derives current inventory state from the append-only ledger.
//
// The reconciliation rule: for each (site, product) pair, the row with the
// greatest (modified, modified_microseconds) wins; if that row is a deletion
// marker the pair has no current inventory. One canonical algorithm is used
// everywhere: an in-memory stable sort on the composite key with the primary
// key (insertion order) as the documented tie-break. No database-level MAX
// shortcuts, so ties resolve identically on every backend.
package ledger
