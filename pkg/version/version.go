// Package version reports how a lexrag binary was built.
//
// Release builds inject Version, Commit and Date with ldflags:
//
//	-X github.com/Aman-CERP/lexrag/pkg/version.Version=$(VERSION)
//
// Binaries built with go install fall back to the module version and the
// VCS stamp recorded by the toolchain.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Name is the program name reported to MCP clients and in version strings.
const Name = "lexrag"

// Set via ldflags.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Tracked lists the modules whose versions change ranking or the MCP wire
// format. Their versions are reported in Info.Deps.
var Tracked = []string{
	"github.com/kljensen/snowball",
	"github.com/modelcontextprotocol/go-sdk",
	"golang.org/x/text",
}

// Info describes a build.
type Info struct {
	Name     string            `json:"name"`
	Version  string            `json:"version"`
	Commit   string            `json:"commit,omitempty"`
	Date     string            `json:"date,omitempty"`
	Modified bool              `json:"modified,omitempty"`
	Go       string            `json:"go"`
	Platform string            `json:"platform"`
	Deps     map[string]string `json:"deps,omitempty"`
}

var buildInfo = sync.OnceValue(func() *debug.BuildInfo {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}
	return bi
})

// Get returns the build description of the running binary.
func Get() Info {
	return fromBuildInfo(buildInfo())
}

func fromBuildInfo(bi *debug.BuildInfo) Info {
	info := Info{
		Name:     Name,
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi == nil {
		return info
	}

	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value[:min(len(s.Value), 12)]
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	for _, dep := range bi.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		for _, path := range Tracked {
			if dep.Path == path {
				if info.Deps == nil {
					info.Deps = make(map[string]string, len(Tracked))
				}
				info.Deps[path] = dep.Version
			}
		}
	}
	return info
}

// String returns a one-line description, e.g.
// "lexrag v0.3.0 (commit 1a2b3c4d5e6f, built 2026-03-01T10:00:00Z, go1.25.5, linux/amd64)".
func (i Info) String() string {
	var parts []string
	if i.Commit != "" {
		commit := i.Commit
		if i.Modified {
			commit += "-dirty"
		}
		parts = append(parts, "commit "+commit)
	}
	if i.Date != "" {
		parts = append(parts, "built "+i.Date)
	}
	parts = append(parts, i.Go, i.Platform)
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, strings.Join(parts, ", "))
}
