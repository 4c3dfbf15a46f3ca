// Package version reports the build of the ingest daemon. Values are set
// with -ldflags and fall back to the VCS stamp in the binary:
//
//	go build -ldflags "-X github.com/kbukum/ingest/version.Version=v1.4.0"
package version
