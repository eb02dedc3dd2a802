// Package build holds version information set with -ldflags -X.
package build

import (
	"fmt"
	"runtime/debug"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
)

var Current Build

func init() {
	date, _ := time.Parse(time.RFC3339, date)
	Current = Build{
		Commit:  commit,
		Version: version,
		Date:    date,
	}

	if Current.Commit != "" {
		return
	}
	// go build from a checkout still records the VCS revision.
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				Current.Commit = s.Value
			case "vcs.time":
				Current.Date, _ = time.Parse(time.RFC3339, s.Value)
			}
		}
	}
}

type Build struct {
	Commit  string    `json:"commit,omitempty"`
	Version string    `json:"version,omitempty"`
	Date    time.Time `json:"date,omitempty"`
}

func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", b.Version, commit)
}
