// Package models defines the persistent entities of the inventory ledger.
//
// Three record kinds are stored: Site, ProductInformation and InventoryItem.
// Sites and products are regular mutable rows. InventoryItem rows form an
// append-only ledger: every inventory change is a new row, and the current
// quantity of a (site, product) pair is never stored, only derived by the
// ledger package.
//
// # Audit triplet
//
// Every entity carries Modified, ModifiedMicroseconds and Modifier. The pair
// (Modified, ModifiedMicroseconds) is the only valid sort key for deciding
// which ledger row is the latest; Modifier records the identity of the last
// writer. Stamp populates the triplet before persistence and preserves a
// pre-set Modified so restores can keep original timestamps.
package models
