// Package version carries the build version string.
package version

// version is overridden at build time via
// -ldflags "-X github.com/jpetrucciani/epimetheus/internal/version.version=v1.2.3".
var version = "dev"

// String returns the build version.
func String() string {
	return version
}
