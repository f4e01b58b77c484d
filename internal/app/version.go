package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Build metadata, set with -ldflags "-X github.com/agbru/fanout/internal/app.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// HasVersionFlag reports whether args request the version banner.
func HasVersionFlag(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-version", "--version", "-V":
			return true
		}
	}
	return false
}

// PrintVersion writes the version banner. When no version was injected at
// link time, the module version recorded by the Go toolchain is used.
func PrintVersion(out io.Writer) {
	version, commit := Version, Commit
	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		if commit == "unknown" {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	fmt.Fprintf(out, "fanout %s\n", version)
	fmt.Fprintf(out, "  commit: %s\n", commit)
	fmt.Fprintf(out, "  built:  %s\n", BuildDate)
	fmt.Fprintf(out, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
