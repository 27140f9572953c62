// Package timeutil provides time formatting utilities for CLI output.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is the format used for displaying local times in CLI output.
// Uses Go's reference time: Mon Jan 2 15:04:05 2006.
const LocalTimeFormat = "Mon Jan 2 15:04:05 2006"

// FormatDuration renders d the way the rest of the CLI renders durations:
// every unit from the largest non-zero one down to whole seconds
// ("3d 0h 0m 0s", "2h 5m 0s", "12s"), instead of Go's full "72h30m15.002s".
func FormatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}

// FormatEventTime renders an event's wire timestamp (Unix seconds, per
// internal/events.Event.Timestamp) as a local time string for NDJSON-adjacent
// human display.
func FormatEventTime(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).Local().Format(LocalTimeFormat)
}
