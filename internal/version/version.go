package version

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
)

const (
	Version = "0.3.0"
)

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	GoVersion string `json:"goVersion"`
	Commit    string `json:"commit,omitempty"`
}

// Get returns the build information, including the VCS revision when the
// binary was built from a checkout.
func Get() Info {
	info := Info{Version: Version, GoVersion: runtime.Version()}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				info.Commit = s.Value[:7]
			}
		}
	}
	return info
}

func HasVersionArg() bool {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		return arg == "--version" || arg == "-version" || arg == "-v" || arg == "--v" || arg == "version"
	}
	return false
}

func ShowVersion() {
	info := Get()
	fmt.Printf("vlyx v%s (%s", info.Version, info.GoVersion)
	if info.Commit != "" {
		fmt.Printf(", %s", info.Commit)
	}
	fmt.Println(")")
}
