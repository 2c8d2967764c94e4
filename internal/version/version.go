// Package version provides the build version
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Version is set by the linker with -ldflags "-X ..."
var (
	Version = "0.0.0"
	Commit  = ""
)

// Info describes the build
type Info struct {
	Version   string
	Commit    string
	GoVersion string
}

// Current returns the current build info
func Current() Info {
	v := Info{
		Version: strings.TrimPrefix(Version, "v"),
		Commit:  Commit,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		v.GoVersion = bi.GoVersion
		if v.Commit == "" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && len(s.Value) >= 7 {
					v.Commit = s.Value[:7]
				}
			}
		}
	}
	return v
}

func (v Info) String() string {
	if v.Commit == "" {
		return v.Version
	}
	return fmt.Sprintf("%s-%s", v.Version, v.Commit)
}
