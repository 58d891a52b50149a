package version // import "github.com/Disya123/Books-Translate/version"

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Version is the service release version, bumped on every release.
var Version = "0.2.0"

func GetCurrentVersion() string {
	return Version
}

// GetMinorVersion returns the minor version, e.g. "0.2" for "0.2.0".
func GetMinorVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return version
	}
	return strings.Join(parts[:2], ".")
}

// GetSchemaVersion returns the schema version for the given release version.
// Patch releases never change the schema, so the schema version is always
// the minor version with a zero patch.
func GetSchemaVersion(version string) string {
	return GetMinorVersion(version) + ".0"
}

func IsVersionGreaterThan(version, target string) bool {
	return semver.Compare("v"+version, "v"+target) > 0
}

func IsVersionGreaterOrEqualThan(version, target string) bool {
	return semver.Compare("v"+version, "v"+target) >= 0
}

// SortVersion sorts a version list in ascending semver order in place and
// returns it.
func SortVersion(versions []string) []string {
	for i := 0; i < len(versions); i++ {
		for j := i + 1; j < len(versions); j++ {
			if semver.Compare("v"+versions[i], "v"+versions[j]) > 0 {
				versions[i], versions[j] = versions[j], versions[i]
			}
		}
	}
	return versions
}
