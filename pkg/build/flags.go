// SPDX-License-Identifier: MIT
//
// Package build exposes metadata injected at compile time through linker
// flags: application name, semantic version, Git commit, and build timestamp.
// The values feed the CLI's Use/Version strings and startup logging.
package build

type Flags struct {
	Name    string
	Version string
	Commit  string
	Time    string
}

// Linker-flag targets, e.g.
//
//	go build -ldflags "-X tonelab/pkg/build.buildVersion=v0.3.0 ..."
var (
	buildName    string
	buildVersion string
	buildCommit  string
	buildTime    string
)

var flags = Flags{
	Name:    "tonelab",
	Version: "dev",
	Commit:  "unknown",
	Time:    "unknown",
}

// Initialize copies any linker-provided values over the development
// defaults. Missing flags keep their defaults so plain `go run` works.
func Initialize() {
	if buildName != "" {
		flags.Name = buildName
	}
	if buildVersion != "" {
		flags.Version = buildVersion
	}
	if buildCommit != "" {
		flags.Commit = buildCommit
	}
	if buildTime != "" {
		flags.Time = buildTime
	}
}

// GetFlags returns the resolved build metadata. Call Initialize first.
func GetFlags() Flags {
	return flags
}
