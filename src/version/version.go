package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// These variables are injected at build time via -ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String returns a human-readable version string.
func String() string {
	return fmt.Sprintf("bandbox %s (%s, %s)", Version, Commit, BuildDate)
}

// Semver parses Version. Development builds have no semantic version and
// return ok=false.
func Semver() (v *semver.Version, ok bool) {
	v, err := semver.NewVersion(Version)
	if err != nil {
		return nil, false
	}
	return v, true
}
