package version

import (
	"fmt"
	"runtime/debug"
)

// sentinel defaults, replaced via ldflags in release builds
const (
	devTag       = "dev"
	devCommit    = "123abc"
	devBuildTime = "now"
)

var (
	tag       = devTag
	commit    = devCommit
	buildTime = devBuildTime
)

const releaseURL = "https://github.com/noot-app/mealplan-scaler/releases/tag/"

// Info is the build identity of the binary
type Info struct {
	Tag       string `json:"tag"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// buildInfoReader is swapped out in tests
var buildInfoReader = debug.ReadBuildInfo

// Get returns the build identity. VCS info fills in commit and time when ldflags did not.
func Get() Info {
	info := Info{Tag: tag, Commit: commit, BuildTime: buildTime}

	bi, ok := buildInfoReader()
	if !ok || bi == nil {
		return info
	}
	for _, setting := range bi.Settings {
		switch {
		case setting.Key == "vcs.revision" && commit == devCommit:
			info.Commit = setting.Value
		case setting.Key == "vcs.time" && buildTime == devBuildTime:
			info.BuildTime = setting.Value
		}
	}
	return info
}

// Short returns the release tag, used as the MCP implementation version
func Short() string {
	return tag
}

// String returns the multi-line version banner
func String() string {
	info := Get()
	return fmt.Sprintf("%s (%s) built at %s\n%s%s", info.Tag, info.Commit, info.BuildTime, releaseURL, info.Tag)
}
