package transport

import (
	"time"

	"github.com/kbukum/restkit/resilience"
	"github.com/kbukum/restkit/security"
	"github.com/kbukum/restkit/validation"
	"github.com/kbukum/restkit/version"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxIdleConns    = 20
	defaultMaxConnsPerHost = 5
	defaultIdleConnTimeout = 90 * time.Second
)

// Config configures the HTTP transport.
type Config struct {
	// Name identifies the transport in logs and resilience callbacks.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a whole exchange, including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent defaults to "restkit/<version>".
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// Headers are sent with every request unless the request sets them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// Auth configures authentication applied to all requests.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// TLS configures certificate verification and client certificates.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Proxy is an explicit proxy URL; empty uses the environment.
	Proxy string `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,url"`

	// MaxIdleConns caps idle connections across hosts. Defaults to 20.
	MaxIdleConns int `yaml:"max_idle_conns" mapstructure:"max_idle_conns" validate:"gte=0"`

	// MaxConnsPerHost caps connections per host. Defaults to 5.
	MaxConnsPerHost int `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host" validate:"gte=0"`

	// IdleConnTimeout closes idle connections after this long. Defaults to 90s.
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout" validate:"gte=0"`

	// HTTP2 enables HTTP/2 over TLS through golang.org/x/net/http2.
	HTTP2 bool `yaml:"http2" mapstructure:"http2"`

	// CircuitBreaker guards calls when set.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimiter throttles calls when set.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`

	// Bulkhead bounds in-flight calls when set.
	Bulkhead *resilience.BulkheadConfig `yaml:"bulkhead" mapstructure:"bulkhead"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = defaultMaxIdleConns
	}
	if c.MaxConnsPerHost == 0 {
		c.MaxConnsPerHost = defaultMaxConnsPerHost
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = defaultIdleConnTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}
