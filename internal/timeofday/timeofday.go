// Package timeofday converts wall-clock times between the 24-hour "HH:MM" form used by
// input widgets and the 12-hour "h:mm AM" form stored on trades.
package timeofday

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	am = "AM"
	pm = "PM"
)

// To12Hour converts "HH:MM" (00:00-23:59) to "h:mm AM|PM".
func To12Hour(time24 string) (string, error) {
	hour, minute, err := Parse24(time24)
	if err != nil {
		return "", err
	}
	return format12(hour, minute), nil
}

// To24Hour converts "h:mm AM|PM" to zero-padded "HH:MM".
func To24Hour(time12 string) (string, error) {
	hour, minute, err := Parse12(time12)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// Parse24 returns the hour (0-23) and minute of a "HH:MM" string.
func Parse24(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("invalid 24-hour time %q", s)
	}
	hour, err = atoiRange(hh, 0, 23)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid 24-hour time %q: hour %w", s, err)
	}
	minute, err = atoiRange(mm, 0, 59)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid 24-hour time %q: minute %w", s, err)
	}
	return hour, minute, nil
}

// Parse12 returns the 24-hour clock hour (0-23) and minute of a "h:mm AM|PM" string.
// A leading zero on the hour ("09:00 AM") is accepted.
func Parse12(s string) (hour, minute int, err error) {
	clock, marker, ok := strings.Cut(s, " ")
	if !ok || (marker != am && marker != pm) {
		return 0, 0, fmt.Errorf("invalid 12-hour time %q", s)
	}
	hh, mm, ok := strings.Cut(clock, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("invalid 12-hour time %q", s)
	}
	h12, err := atoiRange(hh, 1, 12)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid 12-hour time %q: hour %w", s, err)
	}
	minute, err = atoiRange(mm, 0, 59)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid 12-hour time %q: minute %w", s, err)
	}

	hour = h12 % 12
	if marker == pm {
		hour += 12
	}
	return hour, minute, nil
}

// Is24Hour reports whether s is a well-formed "HH:MM" time.
func Is24Hour(s string) bool {
	_, _, err := Parse24(s)
	return err == nil
}

func format12(hour, minute int) string {
	marker := am
	if hour >= 12 {
		marker = pm
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, marker)
}

func atoiRange(s string, lo, hi int) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range %d-%d", n, lo, hi)
	}
	return n, nil
}
