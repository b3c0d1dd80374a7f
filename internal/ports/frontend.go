// Package ports holds the interfaces the binaries drive directly.
package ports

// Frontend is a listener that feeds requests to the assistant
type Frontend interface {
	// Start begins accepting requests without blocking
	Start() error

	// Stop shuts the listener down and waits for in-flight work
	Stop() error
}
