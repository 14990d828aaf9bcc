// Package version reports the build of the artifactstore binary.
//
// Version, commit and build time are stamped with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/artifactstore/version.Version=1.2.0" ./cmd/artifactstore
//
// Commit and build time fall back to the VCS stamps the Go toolchain embeds.
package version
