// Package version reports the stylegen build version.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Set at build time:
//
//	go build -ldflags="-X github.com/muurk/stylegen/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/stylegen/internal/version.Commit=abc123"
//
// Unset values are filled from VCS build info, then from "dev" defaults.
var (
	Version = ""
	Commit  = ""
)

const shortHashLen = 7

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		v, c := fromSettings(info.Settings)
		if Version == "" {
			Version = v
		}
		if Commit == "" {
			Commit = c
		}
	}

	if Version == "" {
		Version = "dev-" + time.Now().Format("20060102-150405")
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// fromSettings derives a version and short commit from VCS build settings.
// Either result is empty when the settings do not carry it.
func fromSettings(settings []debug.BuildSetting) (version, commit string) {
	var revision, modified, vcsTime string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		case "vcs.time":
			vcsTime = s.Value
		}
	}

	if revision != "" {
		commit = revision
		if len(commit) > shortHashLen {
			commit = commit[:shortHashLen]
		}
		if modified == "true" {
			commit += "-dirty"
		}
	}

	if t, err := time.Parse(time.RFC3339, vcsTime); err == nil {
		version = "dev-" + t.Format("20060102")
	}
	return version, commit
}

// Full returns the version with its commit
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
