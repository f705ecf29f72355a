// Package config provides configuration management for RIMS.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. All tunables that the original system kept as
// module-level globals (page sizes, log paths) live here and are passed into
// the engines at construction.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials and backup bucket settings
//   - Log: Logging level, format and optional file path
//   - Audit: Action log file path
//   - Inventory: Reconciliation engine tunables
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
