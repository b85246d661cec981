package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

const unknownStr = "unknown"

// Build information, set with -ldflags
var (
	Version   = "dev"
	Commit    = unknownStr
	BuildDate = unknownStr
)

// VersionInfo represents the version information
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetVersionInfo returns the version information of the running binary
func GetVersionInfo() VersionInfo {
	var settings []debug.BuildSetting
	if info, ok := debug.ReadBuildInfo(); ok {
		settings = info.Settings
	}
	return versionInfo(Version, Commit, BuildDate, settings)
}

// versionInfo fills unknown values of development builds from the VCS
// settings recorded by the Go toolchain
func versionInfo(version, commit, buildDate string, settings []debug.BuildSetting) VersionInfo {
	if version == "dev" {
		for _, setting := range settings {
			switch {
			case setting.Key == "vcs.revision" && commit == unknownStr:
				commit = setting.Value
			case setting.Key == "vcs.time" && buildDate == unknownStr:
				buildDate = setting.Value
			}
		}
		version = fmt.Sprintf("build-%.8s", commit)
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 MST")
	}

	return VersionInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
