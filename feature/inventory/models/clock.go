package models

import (
	"sync"
	"time"
)

var (
	clockMu sync.Mutex
	lastNow time.Time
)

// UniqueNow returns the current time, nudged forward by at least one
// microsecond when two callers land on the same instant. Reconciliation
// orders ledger rows by (second, microsecond), so two writes from this
// process must never receive an identical pair.
func UniqueNow() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()

	now := time.Now().Truncate(time.Microsecond)
	if !now.After(lastNow) {
		now = lastNow.Add(time.Microsecond)
	}
	lastNow = now
	return now
}
