// Package timeutil formats server-reported timestamps and durations for
// terminal output.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// localTimeLayout is the layout for timestamps shown to the user.
const localTimeLayout = "Mon Jan 2 15:04:05 2006"

// FormatTime converts an RFC 3339 timestamp from the server into the
// user's local time. Unparseable input is returned as-is rather than
// hidden behind an error the user cannot act on.
func FormatTime(timestamp string) string {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return timestamp
	}
	return t.Local().Format(localTimeLayout)
}

// FormatUptime renders a Go duration string such as "74h3m7s" in day
// granularity ("3d 2h 3m 7s"). Leading zero units are omitted; unparseable
// input is returned as-is.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	total := int64(d.Seconds())
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if b.Len() > 0 || hours > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	if b.Len() > 0 || minutes > 0 {
		fmt.Fprintf(&b, "%dm ", minutes)
	}
	fmt.Fprintf(&b, "%ds", seconds)
	return b.String()
}
