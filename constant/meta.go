// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Panorama is the canonical application identifier used for filesystem paths and CLI branding.
	Panorama = "panorama"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with every manifest request.
	UserAgent = "panorama/" + Version + " (+https://github.com/panorama-cli/panorama)"
)
