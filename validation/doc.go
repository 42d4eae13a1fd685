// Package validation validates configuration structs using struct tags.
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
//
// Field names in error messages follow the mapstructure key, so they match
// the keys a user wrote in the configuration file.
package validation
