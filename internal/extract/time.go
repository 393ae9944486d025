// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package extract

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	reHours   = regexp.MustCompile(`(?i)(\d+)\s*h`)
	reMinutes = regexp.MustCompile(`(?i)(\d+)\s*min`)
)

// parseMinutes reads a loose "X h Y min" duration into minutes. Unparseable
// segments count as zero.
func parseMinutes(s string) int {
	hours, mins := 0, 0
	if m := reHours.FindStringSubmatch(s); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := reMinutes.FindStringSubmatch(s); m != nil {
		mins, _ = strconv.Atoi(m[1])
	}
	return hours*60 + mins
}

// TotalTime sums preparation and cooking times. When only one is present it
// is returned as-is; a zero-hour total never renders an hour segment.
func TotalTime(prepTime, cookTime string) string {
	if prepTime == "" && cookTime == "" {
		return ""
	}
	if cookTime == "" {
		return prepTime
	}
	if prepTime == "" {
		return cookTime
	}

	total := parseMinutes(prepTime) + parseMinutes(cookTime)
	hours, mins := total/60, total%60

	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%d h %d min", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%d h", hours)
	default:
		return fmt.Sprintf("%d min", mins)
	}
}
