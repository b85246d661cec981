// Package versions compares crate versions and reports build version information.
package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
// It uses semantic versioning for comparison when both strings are valid semver,
// and falls back to lexicographic string comparison otherwise.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)

	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}

	return newSemver.GreaterThan(oldSemver)
}

// Latest returns the greatest of candidates, or "" when there are none
func Latest(candidates []string) string {
	var latest string
	for i, candidate := range candidates {
		if i == 0 || IsNewerVersion(candidate, latest) {
			latest = candidate
		}
	}
	return latest
}
