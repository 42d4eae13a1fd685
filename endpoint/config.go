package endpoint

import (
	"github.com/kbukum/restkit/transport"
	"github.com/kbukum/restkit/validation"
)

// Config configures an Endpoint.
type Config struct {
	// Name identifies the endpoint in logs, metrics and health reports.
	Name string `yaml:"name" mapstructure:"name"`

	// BaseURL is the absolute URL resource paths are appended to.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required"`

	// DetectContentType sniffs the body when a response carries no
	// Content-Type header. Off by default: such responses fail negotiation.
	DetectContentType bool `yaml:"detect_content_type" mapstructure:"detect_content_type"`

	// Transport configures the default HTTP transport. Ignored when a
	// transport is supplied with WithTransport.
	Transport transport.Config `yaml:"transport" mapstructure:"transport"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "rest"
	}
	if c.Transport.Name == "" {
		c.Transport.Name = c.Name
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
