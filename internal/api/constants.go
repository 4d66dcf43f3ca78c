package api

// API limits.
const (
	// MaxFileBodySize caps request bodies that carry file content (32 MB).
	// Data URLs inflate binary content by a third.
	MaxFileBodySize = 32 << 20

	// defaultSearchLimit is applied when a search request names no limit.
	defaultSearchLimit = 20
)
