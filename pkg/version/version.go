package version

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var versionFile string

// Version returns the current neurobik version
func Version() string {
	return strings.TrimSpace(versionFile)
}

// GetBuildID returns the current neurobik version (alias for Version)
func GetBuildID() string {
	return Version()
}
