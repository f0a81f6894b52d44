package fixturefeed

import (
	"strconv"
	"strings"
	"time"
)

// epochSecondsCeiling separates epoch seconds from epoch milliseconds.
// 1e11 seconds is far in the future; 1e11 milliseconds is early 1973.
const epochSecondsCeiling = int64(1e11)

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -0700 MST",
	time.RFC1123Z,
	time.RFC1123,
}

// Naive layouts carry no offset and are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2 Jan 2006 15:04",
	"Jan 2, 2006 15:04",
	"2006-01-02",
	"02/01/2006",
}

// ParseKickoff normalizes an upstream kickoff value to UTC. It accepts epoch
// seconds or milliseconds as a numeric string, zoned timestamps, and a set
// of naive layouts.
func ParseKickoff(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if epoch, err := strconv.ParseInt(value, 10, 64); err == nil {
		return epochToTime(epoch), true
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func epochToTime(v int64) time.Time {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs < epochSecondsCeiling {
		return time.Unix(v, 0).UTC()
	}
	return time.UnixMilli(v).UTC()
}
