package ports

import (
	"context"
)

// Flag names evaluated by the application.
const (
	// FlagPushLocalOnly enables forwarding local-only records to the remote after a pass.
	FlagPushLocalOnly = "push-local-only"

	// FlagAdoptPushedIDs replaces a pushed local record with the server version on success.
	FlagAdoptPushedIDs = "adopt-pushed-ids"
)

// FeatureFlags evaluates runtime switches without knowing the provider.
// Every lookup takes a default so a missing flag degrades gracefully.
type FeatureFlags interface {
	// IsEnabled checks if a boolean flag is enabled.
	IsEnabled(ctx context.Context, flag string, defaultValue bool) bool

	// GetString retrieves a string flag value.
	GetString(ctx context.Context, flag string, defaultValue string) string

	// GetInt retrieves an integer flag value.
	GetInt(ctx context.Context, flag string, defaultValue int) int
}
