// Package config loads artifactstore configuration.
//
// Values come from a YAML file (explicit, or found in standard locations
// such as ./config.yml), then a .env file, then environment variables,
// each layer overriding the previous. Environment variables map onto
// nested keys by underscores: STORAGE_DATABASE_DSN sets storage.database.dsn.
//
//	cfg, err := config.Load(config.WithConfigFile("artifactstore.yml"))
package config
