package cli

import (
	"fmt"
	"sort"

	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/endpoint"
	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/provider"
	"github.com/kbukum/restkit/transport"
)

const appName = "restc"

// Config is the restc configuration file layout.
//
//	name: restc
//	logging:
//	  level: warn
//	endpoints:
//	  users:
//	    base_url: https://users.example.com/v1
//	    transport:
//	      timeout: 10s
//	resilience:
//	  retry:
//	    max_attempts: 3
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Endpoints     map[string]endpoint.Config `yaml:"endpoints" mapstructure:"endpoints"`
	Resilience    provider.ResilienceConfig  `yaml:"resilience" mapstructure:"resilience"`
	Observability *observability.Config      `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults keeps the CLI quiet unless asked otherwise.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = appName
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "warn"
	}
	c.ServiceConfig.ApplyDefaults()
	for name, ep := range c.Endpoints {
		if ep.Name == "" {
			ep.Name = name
		}
		ep.ApplyDefaults()
		c.Endpoints[name] = ep
	}
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	for _, name := range c.endpointNames() {
		ep := c.Endpoints[name]
		if err := ep.Validate(); err != nil {
			return fmt.Errorf("endpoints.%s: %w", name, err)
		}
	}
	if c.Observability != nil {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("observability: %w", err)
		}
	}
	return nil
}

func (c *Config) endpointNames() []string {
	names := make([]string, 0, len(c.Endpoints))
	for name := range c.Endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// endpointConfig picks the endpoint a request goes to and applies the
// command-line overrides. A named endpoint must exist; without a name the
// base URL flag is used, or the only configured endpoint.
func (c *Config) endpointConfig(opts *options) (endpoint.Config, error) {
	var ep endpoint.Config
	switch {
	case opts.endpoint != "":
		found, ok := c.Endpoints[opts.endpoint]
		if !ok {
			return ep, errors.InvalidConfig(fmt.Sprintf("endpoint %q is not configured", opts.endpoint), nil)
		}
		ep = found
	case opts.baseURL != "":
		ep = endpoint.Config{Name: c.Name}
	case len(c.Endpoints) == 1:
		ep = c.Endpoints[c.endpointNames()[0]]
	default:
		return ep, errors.InvalidConfig("no endpoint selected: pass --base-url or --endpoint", nil)
	}

	if opts.baseURL != "" {
		ep.BaseURL = opts.baseURL
	}
	if opts.timeout > 0 {
		ep.Transport.Timeout = opts.timeout
	}
	if opts.bearer != "" {
		ep.Transport.Auth = transport.BearerAuth(opts.bearer)
	}
	return ep, nil
}
