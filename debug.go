package perantara

import "github.com/google/uuid"

// DebugConfig controls debug logging for the request pipeline. Logging only
// happens when Enabled is true and the client has a Logger.
type DebugConfig struct {
	Enabled         bool
	LogRequests     bool
	LogInterceptors bool
	LogDispatch     bool
	RequestIDGen    func() string
}

// DefaultDebugConfig returns a configuration with every log category on but
// debug itself disabled. Request IDs are random UUIDs.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:         false,
		LogRequests:     true,
		LogInterceptors: true,
		LogDispatch:     true,
		RequestIDGen:    uuid.NewString,
	}
}
