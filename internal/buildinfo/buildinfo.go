// Package buildinfo holds release metadata set at link time:
//
//	go build -ldflags "-X github.com/aidanlsb/mvtag/internal/buildinfo.Version=v0.3.0"
package buildinfo

// Empty for local builds.
var (
	Version = ""
	Commit  = ""
	Date    = ""
)
