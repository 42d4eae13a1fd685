// Package config loads application configuration for restkit clients.
//
// Load reads a config file (YAML, JSON or TOML) through Viper, fills unset
// environment variables from an optional .env file, and applies environment
// overrides named after the application:
//
//	var cfg ClientConfig
//	if err := config.Load("restc", &cfg, config.WithConfigFile("restc.yml")); err != nil {
//	    return err
//	}
//
// With the application name "restc", endpoints.users.base_url is overridden
// by RESTC_ENDPOINTS_USERS_BASE_URL.
package config
