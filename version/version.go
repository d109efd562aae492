// Package version reports build metadata for the /version and /flags endpoints.
package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

// Set at build time with -ldflags "-X tutor-service/version.GitSHA=...".
// debug.ReadBuildInfo fills the VCS fields when they are left empty.
var (
	BuildVersion = "dev"
	GitSHA       = ""
	BuildTime    = ""
)

type Info struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	GitSHA      string `json:"git_sha,omitempty"`
	BuildTime   string `json:"build_time,omitempty"`
	VCSModified *bool  `json:"vcs_modified,omitempty"`
	GoVersion   string `json:"go_version"`
	GOOS        string `json:"go_os"`
	GOARCH      string `json:"go_arch"`
}

// Revision returns the commit the binary was built from, or "" when unknown.
func Revision() string {
	return Get("").GitSHA
}

func Get(service string) Info {
	gitSHA := GitSHA
	buildTime := BuildTime
	var modified *bool

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if gitSHA == "" {
					gitSHA = s.Value
				}
			case "vcs.time":
				if buildTime == "" {
					buildTime = s.Value
				}
			case "vcs.modified":
				if modified == nil {
					if b, err := strconv.ParseBool(s.Value); err == nil {
						modified = &b
					}
				}
			}
		}
	}

	return Info{
		Service:     service,
		Version:     BuildVersion,
		GitSHA:      gitSHA,
		BuildTime:   buildTime,
		VCSModified: modified,
		GoVersion:   runtime.Version(),
		GOOS:        runtime.GOOS,
		GOARCH:      runtime.GOARCH,
	}
}
