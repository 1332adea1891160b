package forecast

import (
	"strings"
	"time"
)

// windowCutoverMinute is the minute of the hour past which the checker
// widens the window to two entries. A run started late in the hour would
// otherwise miss most of the "next hour" it is meant to cover.
const windowCutoverMinute = 10

// NoRainMessage is the status sent when no selected entry predicts rain.
const NoRainMessage = "No rain in the next hour"

// Decision is the outcome of inspecting the selected hourly entries.
type Decision struct {
	// Message is the notification text, exactly one per run.
	Message string
	// IconID is the icon identifier to attach; may be empty if the provider
	// sent no condition record for the fallback entry.
	IconID string
	// Raining reports whether a rain condition was matched.
	Raining bool
}

// WindowSize returns how many leading hourly entries to inspect for the
// given run start time: one when at most windowCutoverMinute minutes past
// the hour, two otherwise.
func WindowSize(now time.Time) int {
	if now.Minute() > windowCutoverMinute {
		return 2
	}
	return 1
}

// SelectWindow returns the leading entries to inspect, clamped to the
// length of the forecast.
func SelectWindow(entries []HourlyEntry, now time.Time) []HourlyEntry {
	n := WindowSize(now)
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}

// FindRain scans entries in order and returns the first condition whose
// category contains "rain" (case-insensitive substring). The boolean
// reports whether a match was found.
func FindRain(entries []HourlyEntry) (Condition, bool) {
	for _, entry := range entries {
		cond, ok := entry.primary()
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(cond.Main), "rain") {
			return cond, true
		}
	}
	return Condition{}, false
}

// Decide inspects the selected entries and produces the single message and
// icon for this run. When no entry matches, the message is the static
// no-rain status and the icon falls back to the first selected entry's.
func Decide(selected []HourlyEntry) Decision {
	if cond, ok := FindRain(selected); ok {
		return Decision{
			Message: "Rain alert: " + cond.Description + " in the next hour",
			IconID:  cond.Icon,
			Raining: true,
		}
	}

	var icon string
	if len(selected) > 0 {
		if cond, ok := selected[0].primary(); ok {
			icon = cond.Icon
		}
	}
	return Decision{
		Message: NoRainMessage,
		IconID:  icon,
	}
}
