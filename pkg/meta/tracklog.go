package meta

import (
	"time"

	"github.com/evenbre/fmio/internal/sysinfo"
)

// NewTracklogEvent creates one audit event with the current timestamp,
// acting user and a system info snapshot. Each metadata generation appends
// exactly one such event ("created" for fresh documents, "merged" for
// aggregations).
func NewTracklogEvent(event string) TracklogEvent {
	snap := sysinfo.Collect()
	return TracklogEvent{
		Datetime: Datetime(time.Now()),
		Event:    event,
		User:     User{ID: sysinfo.CurrentUser()},
		Sysinfo: &SystemInformation{
			Fmio: &VersionInfo{Version: sysinfo.Version},
			OperatingSystem: &OperatingSystem{
				Hostname:        snap.Hostname,
				OperatingSystem: snap.OperatingSystem,
				Release:         snap.Release,
				System:          snap.System,
				Version:         snap.Version,
			},
		},
	}
}
