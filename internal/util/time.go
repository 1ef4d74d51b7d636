package util

import (
	"fmt"
	"strings"
	"time"
)

// clockLayouts are the accepted wall-clock spellings. Single-digit layouts
// also accept a leading zero.
var clockLayouts = []string{"15:04", "3:04PM", "3:04 PM"}

const clockHelp = "Valid formats:\n" +
	"• 24-hour: HH:MM (23:30, 09:45)\n" +
	"• 12-hour: HH:MM AM/PM (11:30PM, 9:45 AM)"

// ParseClock returns the instant on now's date, in now's location, at the
// wall-clock time s.
func ParseClock(s string, now time.Time) (time.Time, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid time format: %s\n\n%s", s, clockHelp)
}

// UntilClock returns how long until the next occurrence of the wall-clock
// time s. A time at or before now means tomorrow.
func UntilClock(s string, now time.Time) (time.Duration, error) {
	target, err := ParseClock(s, now)
	if err != nil {
		return 0, err
	}
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target.Sub(now), nil
}
