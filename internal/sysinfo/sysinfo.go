// Package sysinfo captures a snapshot of the running system for tracklog events.
package sysinfo

import (
	"os"
	"os/user"
	"runtime"
)

// Version is the fmio release version stamped into generated metadata.
// Overridden at build time via -ldflags "-X .../internal/sysinfo.Version=...".
var Version = "0.0.0-dev"

// Snapshot describes the host and runtime at the time of an event.
type Snapshot struct {
	Hostname        string
	OperatingSystem string
	Release         string
	System          string
	Version         string
}

// Collect gathers host information. Fields that cannot be determined are
// left empty rather than failing; tracklog system info is best-effort.
func Collect() Snapshot {
	hostname, _ := os.Hostname()
	return Snapshot{
		Hostname:        hostname,
		OperatingSystem: runtime.GOOS + "-" + runtime.GOARCH,
		Release:         runtime.Version(),
		System:          runtime.GOOS,
		Version:         runtime.Version(),
	}
}

// CurrentUser returns the acting user id, falling back to $USER and then
// "unknown" when the lookup fails (e.g. static binaries without cgo).
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if env := os.Getenv("USER"); env != "" {
		return env
	}
	return "unknown"
}
