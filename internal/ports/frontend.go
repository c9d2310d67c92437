package ports

// Frontend defines the interface for a long-running stats frontend
type Frontend interface {
	// Start starts the frontend service
	Start() error

	// Stop stops the frontend service
	Stop() error
}
