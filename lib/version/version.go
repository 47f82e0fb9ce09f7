// Copyright 2026 The JALAI Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full adds the Go version and platform to Info.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// UserAgent is the User-Agent the CLI sends, e.g.
// "jalai/0.1.0-dev (linux/amd64)".
func UserAgent(program string) string {
	return fmt.Sprintf("%s/%s (%s/%s)", program, Version, runtime.GOOS, runtime.GOARCH)
}

// BuildInfo is the structured form for JSON output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Dirty     bool   `json:"dirty"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the BuildInfo of the running binary.
func Current() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		Dirty:     GitDirty == "true",
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}
