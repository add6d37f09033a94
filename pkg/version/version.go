// Package version carries build information injected at link time.
//
// Build with:
//
//	go build -ldflags "-X github.com/marmos91/photovault/pkg/version.Version=v1.2.3 \
//	  -X github.com/marmos91/photovault/pkg/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/marmos91/photovault/pkg/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import "runtime"

// Build-time variables injected via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build information reported by the version endpoint and CLI.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
