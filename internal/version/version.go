// Package version centralizes build-time version metadata.
package version

// Version is overridden at build time via
// -ldflags "-X github.com/sibyllinesoft/refactorlens/internal/version.Version=v1.2.3"
var Version = "dev"
