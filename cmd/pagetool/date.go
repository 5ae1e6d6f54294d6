package main

import (
	"fmt"
	"time"
)

// dateLayouts are the formats editors actually type. Day-first short dates
// are tried before ISO so 23-08-26 is not read as year 23.
var dateLayouts = []string{"02-01-06", "2006-01-02", "020106"}

// parseDate parses an edition date flag. An empty value means today.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (want 2006-01-02, 02-01-06 or 020106)", s)
}
