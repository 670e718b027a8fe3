package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBuildInfo_NoBuildInfo(t *testing.T) {
	info := fromBuildInfo(nil)

	assert.Equal(t, Name, info.Name)
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.Empty(t, info.Deps)
}

func TestFromBuildInfo_UsesModuleAndVCSStamp(t *testing.T) {
	// Given: a go install build of a tagged module with a dirty tree
	bi := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/Aman-CERP/lexrag", Version: "v0.4.1"},
		Deps: []*debug.Module{
			{Path: "github.com/kljensen/snowball", Version: "v0.9.0"},
			{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
			{
				Path:    "github.com/modelcontextprotocol/go-sdk",
				Version: "v1.2.0",
				Replace: &debug.Module{Path: "github.com/modelcontextprotocol/go-sdk", Version: "v1.2.1"},
			},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-03-01T10:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	// When: no ldflags were injected
	info := fromBuildInfo(bi)

	// Then: module version, VCS stamp and tracked deps are reported
	assert.Equal(t, "v0.4.1", info.Version)
	assert.Equal(t, "0123456789ab", info.Commit)
	assert.Equal(t, "2026-03-01T10:00:00Z", info.Date)
	assert.True(t, info.Modified)
	assert.Equal(t, map[string]string{
		"github.com/kljensen/snowball":           "v0.9.0",
		"github.com/modelcontextprotocol/go-sdk": "v1.2.1",
	}, info.Deps)
}

func TestFromBuildInfo_LdflagsWin(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "1.0.0", "feedbee"

	info := fromBuildInfo(&debug.BuildInfo{
		Main:     debug.Module{Version: "v0.4.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
	})

	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "feedbee", info.Commit)
}

func TestFromBuildInfo_DevelMainKeepsDev(t *testing.T) {
	info := fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})

	assert.Equal(t, "dev", info.Version)
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "local build",
			info: Info{Name: "lexrag", Version: "dev", Go: "go1.25.5", Platform: "linux/amd64"},
			want: "lexrag dev (go1.25.5, linux/amd64)",
		},
		{
			name: "release build from a dirty tree",
			info: Info{
				Name: "lexrag", Version: "v0.4.1", Commit: "0123456789ab", Modified: true,
				Date: "2026-03-01T10:00:00Z", Go: "go1.25.5", Platform: "darwin/arm64",
			},
			want: "lexrag v0.4.1 (commit 0123456789ab-dirty, built 2026-03-01T10:00:00Z, go1.25.5, darwin/arm64)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestGet_IsJSONSerializable(t *testing.T) {
	data, err := json.Marshal(Get())
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	for _, key := range []string{"name", "version", "go", "platform"} {
		assert.Contains(t, parsed, key)
	}
}
