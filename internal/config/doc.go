// Package config provides centralized configuration management for CarPulse.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. YAML file: $CARPULSE_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. .env file in the working directory (never overrides the real environment)
//	4. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern CARPULSE_<SECTION>_<KEY>:
//
//	CARPULSE_SERVER_PORT=8080
//	CARPULSE_LOGGING_LEVEL=debug
//	CARPULSE_PRICING_EXPECTED_KM_PER_YEAR=18000
//	CARPULSE_PRICING_POPULAR_BRANDS=Toyota,Nissan,Kia
//
// The kilometraje step table is only configurable from the YAML file:
//
//	pricing:
//	  kilometraje_steps:
//	    - {up_to: -30000, percent: 0.15}
//	    - {up_to: 5000, inclusive: true, percent: 0}
//	  beyond_percent: -0.15
//
// # Validation
//
// Load validates server, security, logging and websocket settings and runs
// pricing.Params.Validate on the pricing section, so an engine can always be
// built from a loaded configuration.
package config
