// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or
// SQLite (tests, single-machine deployments) connections from the
// application's configuration.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The restore
// pipeline uses them as a preflight check: all three inventory tables must
// exist before any destructive work starts.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
