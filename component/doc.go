// Package component defines the lifecycle contract shared by long-lived
// parts of the client: endpoints, transports and test servers.
package component
