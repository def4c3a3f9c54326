// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/growth-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthLabels returns count+1 labels starting at start, one per month. An
// empty start labels months by their index instead ("M0", "M1", ...).
func MonthLabels(start string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("month count must not be negative, got %d", count)
	}
	labels := make([]string, count+1)
	if start == "" {
		for i := range labels {
			labels[i] = fmt.Sprintf("M%d", i)
		}
		return labels, nil
	}

	t, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	for i := range labels {
		labels[i] = t.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return labels, nil
}
