// Package version provides name and version information for shtack.
// The Version variable is set at build time via ldflags.
package version

// Name is the service name reported by the index endpoint.
const Name = "Shtack"

// Version is the current version of shtack.
// Set at build time via: -ldflags "-X github.com/Chargde-Porcupine/SHtack/internal/version.Version=1.1"
var Version = "1.0"

// String returns "<Name> <Version>".
func String() string {
	return Name + " " + Version
}
