package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origTag, origCommit, origBuildTime := tag, commit, buildTime
	origBuildInfoReader := buildInfoReader
	t.Cleanup(func() {
		tag, commit, buildTime = origTag, origCommit, origBuildTime
		buildInfoReader = origBuildInfoReader
	})

	vcs := func(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
		return func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{Settings: settings}, true
		}
	}

	tests := []struct {
		name      string
		tag       string
		commit    string
		buildTime string
		reader    func() (*debug.BuildInfo, bool)
		expected  string
	}{
		{
			name:      "with preset values",
			tag:       "v1.0.0",
			commit:    "abc123",
			buildTime: "2025-04-15",
			reader:    func() (*debug.BuildInfo, bool) { return nil, false },
			expected:  "v1.0.0 (abc123) built at 2025-04-15\nhttps://github.com/noot-app/mealplan-scaler/releases/tag/v1.0.0",
		},
		{
			name:      "with mock build info",
			tag:       devTag,
			commit:    devCommit,
			buildTime: devBuildTime,
			reader: vcs(
				debug.BuildSetting{Key: "vcs.revision", Value: "mock-commit-hash"},
				debug.BuildSetting{Key: "vcs.time", Value: "mock-build-time"},
				debug.BuildSetting{Key: "other.key", Value: "other-value"},
			),
			expected: "dev (mock-commit-hash) built at mock-build-time\nhttps://github.com/noot-app/mealplan-scaler/releases/tag/dev",
		},
		{
			name:      "with empty build info settings",
			tag:       devTag,
			commit:    "unchanged-commit",
			buildTime: "unchanged-date",
			reader:    vcs(),
			expected:  "dev (unchanged-commit) built at unchanged-date\nhttps://github.com/noot-app/mealplan-scaler/releases/tag/dev",
		},
		{
			name:      "ldflags precedence over vcs",
			tag:       "v2.0.0",
			commit:    "ldflags-commit",
			buildTime: "ldflags-time",
			reader: vcs(
				debug.BuildSetting{Key: "vcs.revision", Value: "vcs-commit-hash"},
				debug.BuildSetting{Key: "vcs.time", Value: "vcs-build-time"},
			),
			expected: "v2.0.0 (ldflags-commit) built at ldflags-time\nhttps://github.com/noot-app/mealplan-scaler/releases/tag/v2.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, commit, buildTime = tt.tag, tt.commit, tt.buildTime
			buildInfoReader = tt.reader

			assert.Equal(t, tt.expected, String())
			assert.Equal(t, tt.tag, Short())
		})
	}
}
