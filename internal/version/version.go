package version

// Version is the current version of stock-replay.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/stock-replay/internal/version.Version=0.2.0"
// The value "main" indicates a development build.
var Version = "v0.1.0"

// GetVersion returns the current version of the application.
func GetVersion() string {
	return Version
}
