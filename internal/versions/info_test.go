package versions

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionInfo(t *testing.T) {
	t.Parallel()

	vcs := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
	}

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
		settings  []debug.BuildSetting
		expected  VersionInfo
	}{
		{
			name:      "release build keeps ldflags values",
			version:   "v1.2.3",
			commit:    "abc",
			buildDate: unknownStr,
			settings:  vcs,
			expected:  VersionInfo{Version: "v1.2.3", Commit: "abc", BuildDate: unknownStr},
		},
		{
			name:      "dev build uses vcs settings",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			settings:  vcs,
			expected: VersionInfo{
				Version:   "build-01234567",
				Commit:    "0123456789abcdef",
				BuildDate: "2026-01-02 03:04:05 UTC",
			},
		},
		{
			name:      "dev build without vcs settings",
			version:   "dev",
			commit:    unknownStr,
			buildDate: unknownStr,
			expected:  VersionInfo{Version: "build-unknown", Commit: unknownStr, BuildDate: unknownStr},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			info := versionInfo(tt.version, tt.commit, tt.buildDate, tt.settings)

			tt.expected.GoVersion = runtime.Version()
			tt.expected.Platform = runtime.GOOS + "/" + runtime.GOARCH
			assert.Equal(t, tt.expected, info)
		})
	}
}
