package endpoint

import (
	"context"
	"fmt"

	"github.com/kbukum/restkit/component"
	"github.com/kbukum/restkit/errors"
)

// Component wraps an Endpoint with lifecycle management.
// The endpoint is created in Start.
type Component struct {
	endpoint *Endpoint
	config   Config
	opts     []Option
}

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a new endpoint component.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	cfg.Transport.ApplyDefaults()
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	return c.config.Name
}

// Start builds the endpoint.
func (c *Component) Start(_ context.Context) error {
	e, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.endpoint = e
	return nil
}

// Stop releases transport resources.
func (c *Component) Stop(ctx context.Context) error {
	if c.endpoint != nil {
		return c.endpoint.Close(ctx)
	}
	return nil
}

// Health reports unhealthy before Start and while the transport refuses calls.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case c.endpoint == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	case !c.endpoint.IsAvailable(ctx):
		h.Status, h.Message = component.StatusUnhealthy, "circuit open"
	}
	return h
}

// Describe returns a one-line summary of the component.
func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    c.Name(),
		Type:    "rest-endpoint",
		Details: fmt.Sprintf("%s timeout=%s", c.config.BaseURL, c.config.Transport.Timeout),
	}
}

// Endpoint returns the underlying endpoint. It fails with SERVICE_UNAVAILABLE
// before Start.
func (c *Component) Endpoint() (*Endpoint, error) {
	if c.endpoint == nil {
		return nil, errors.ServiceUnavailable(fmt.Sprintf("endpoint %q is not started", c.Name()), nil)
	}
	return c.endpoint, nil
}
