package analytics

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const secondsPerDay = 24 * 60 * 60

// ParseDuration reads an elapsed "HH:MM:SS" (or "HH:MM") value into seconds.
// Hours are unbounded so multi-day totals round-trip.
func ParseDuration(s string) (int64, error) {
	h, m, sec, err := splitClock(s)
	if err != nil {
		return 0, err
	}
	return int64(h)*3600 + int64(m)*60 + int64(sec), nil
}

// FormatDuration renders seconds as zero padded "HH:MM:SS".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ClockSeconds reads a time of day into seconds since midnight.
func ClockSeconds(s string) (int, error) {
	h, m, sec, err := splitClock(s)
	if err != nil {
		return 0, err
	}
	if h > 23 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return h*3600 + m*60 + sec, nil
}

// NormalizeClock rewrites "HH:MM" and "H:MM:SS" as "HH:MM:SS".
func NormalizeClock(s string) (string, error) {
	secs, err := ClockSeconds(s)
	if err != nil {
		return "", err
	}
	return FormatDuration(int64(secs)), nil
}

// NormalizeDuration rewrites an elapsed duration as "HH:MM:SS".
func NormalizeDuration(s string) (string, error) {
	secs, err := ParseDuration(s)
	if err != nil {
		return "", err
	}
	return FormatDuration(secs), nil
}

// ElapsedHours returns the run length between two times of day. An end before
// the start is a run that crossed midnight.
func ElapsedHours(start, end string) (float64, bool) {
	s, err := ClockSeconds(start)
	if err != nil {
		return 0, false
	}
	e, err := ClockSeconds(end)
	if err != nil {
		return 0, false
	}
	diff := e - s
	if diff < 0 {
		diff += secondsPerDay
	}
	return float64(diff) / 3600, true
}

func splitClock(s string) (h, m, sec int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid time %q: want HH:MM:SS", s)
	}
	vals := [3]int{}
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil || v < 0 || p == "" {
			return 0, 0, 0, fmt.Errorf("invalid time %q: want HH:MM:SS", s)
		}
		vals[i] = v
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, 0, 0, fmt.Errorf("invalid time %q: minutes and seconds must be below 60", s)
	}
	return vals[0], vals[1], vals[2], nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
