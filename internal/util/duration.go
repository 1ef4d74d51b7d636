// Package util parses the session lengths accepted on the command line and
// in the timed-start prompt.
package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const durationHelp = "Valid formats:\n" +
	"• Minutes: 30, 120\n" +
	"• Go duration: 45m, 2h30m, 1h30m45s"

// ParseDuration accepts a whole number of minutes or a Go duration string.
// Negative values are rejected.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	d, err := time.ParseDuration(s)
	if minutes, convErr := strconv.Atoi(s); convErr == nil {
		d, err = time.Duration(minutes)*time.Minute, nil
	}
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration format: %s\n\n%s", s, durationHelp)
	}
	return d, nil
}
