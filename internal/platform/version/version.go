// Package version reports what build is running. Release builds set the
// variables with -ldflags; plain `go build` falls back to the VCS stamp Go
// embeds in the binary.
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// Service is reported by /version, the startup log line and the User-Agent
// sent to remote inference servers.
const Service = "game-review-sentiment"

const unknown = "unknown"

var (
	Version   = "dev"
	Commit    = unknown
	BuildTime = unknown
)

type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	Modified  bool   `json:"modified,omitempty"`
	GoVersion string `json:"go_version"`
}

var readBuildInfo = debug.ReadBuildInfo

var (
	infoOnce sync.Once
	info     Info
)

// Get returns the build information, resolved once per process.
func Get() Info {
	infoOnce.Do(func() { info = resolve() })
	return info
}

func resolve() Info {
	i := Info{
		Service:   Service,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	bi, ok := readBuildInfo()
	if !ok {
		return i
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.Commit == unknown {
				i.Commit = s.Value
			}
		case "vcs.time":
			if i.BuildTime == unknown {
				i.BuildTime = s.Value
			}
		case "vcs.modified":
			i.Modified = s.Value == "true"
		}
	}
	return i
}

// UserAgent identifies this service on outbound HTTP calls.
func UserAgent() string {
	return Service + "/" + Get().Version
}
