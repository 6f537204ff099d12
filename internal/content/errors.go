package content

import "errors"

var (
	// ErrNotConfigured is returned when a provider's required credential is
	// absent. The curator records it and moves on without attempting the
	// provider.
	ErrNotConfigured = errors.New("provider credential not configured")

	// ErrUnknownProvider is returned when a caller requests a provider
	// name outside the known set.
	ErrUnknownProvider = errors.New("unknown content provider")
)
