package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed part of the client.
type Component interface {
	// Name returns the unique name of the component.
	Name() string

	// Start initializes the component.
	Start(ctx context.Context) error

	// Stop releases the component's resources.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line summary a component reports about itself.
type Description struct {
	// Name is the display name; Name() is used when empty.
	Name string `json:"name"`
	// Type categorizes the component, e.g. "rest-endpoint".
	Type string `json:"type"`
	// Details is a human-readable summary such as "https://api.example.com timeout=30s".
	Details string `json:"details"`
}

// Describable is optionally implemented by components to self-report.
type Describable interface {
	Describe() Description
}
