// Package config provides configuration parsing for the storefront binary.
//
// The configuration is stored in storefront.json (or storefront.yaml) next
// to the binary's working directory. Every field has a default, so the file
// is optional for `storefront serve`.
//
// # Configuration File Structure
//
//	{
//	  "server": {"host": "0.0.0.0", "port": 8080},
//	  "storage": {
//	    "backend": "redis",
//	    "redis": {"addr": "localhost:6379", "prefix": "storefront:"}
//	  },
//	  "cart": {"storageKey": "terpenos-cart"},
//	  "i18n": {"storageKey": "language", "translations": "./translations.yaml"},
//	  "metrics": {"enabled": true, "namespace": "storefront"},
//	  "logging": {"level": "info", "format": "json"}
//	}
//
// STOREFRONT_PORT, STOREFRONT_STORAGE, STOREFRONT_REDIS_ADDR and
// STOREFRONT_SQL_DSN override the file.
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config
