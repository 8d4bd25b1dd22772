// Package version provides build version information.
//
// Version, git commit, branch and build time are set at compile time via
// -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/diarkit/version.Version=1.0.0" ./cmd/diarize
package version
