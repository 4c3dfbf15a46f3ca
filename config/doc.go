// Package config loads service configuration with Viper.
//
// A YAML file provides the base values, a .env file (loaded with godotenv)
// and the process environment override them. Environment variables use the
// upper-cased service name as prefix with underscores for nesting, so
// INGESTD_QUEUES_BULK_WORKERS sets queues.bulk.workers.
//
//	var cfg MyConfig
//	err := config.LoadConfig("ingestd", &cfg, config.WithConfigFile(path))
package config
