/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Gridstate Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package values

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateParseFormats lists formats to try when parsing datetime strings, in order of preference.
var dateParseFormats = []string{
	time.RFC3339Nano,          // 2006-01-02T15:04:05.999999999Z07:00
	time.RFC3339,              // 2006-01-02T15:04:05Z07:00
	"2006-01-02T15:04:05",     // ISO without timezone
	"2006-01-02 15:04:05",     // Space separator
	"2006-01-02T15:04",        // datetime-local inputs
	"2006-01-02",              // Date only (midnight)
	"2006/01/02",              // YYYY/MM/DD
	"02-Jan-2006",             // DD-Mon-YYYY
	"Jan 2, 2006",             // Natural format
	"January 2, 2006",         // Full month name
	"2006-01-02T15:04:05.000", // ISO with milliseconds no TZ
	"2006-01-02 15:04:05.000", // Space with milliseconds
}

// ParseDatetime attempts to parse a string as a datetime value.
// Tries multiple formats and returns the first successful parse.
// Empty and null spellings yield the zero time without an error.
func ParseDatetime(s string, defaultLoc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)

	if s == "" || s == "null" || s == "nil" || s == "NULL" {
		return time.Time{}, nil
	}

	if defaultLoc == nil {
		defaultLoc = time.UTC
	}

	if isNumericString(s) {
		t, ok := parseUnixTimestamp(s)
		if !ok {
			return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", s)
		}
		return t, nil
	}

	for _, format := range dateParseFormats {
		if t, err := time.ParseInLocation(format, s, defaultLoc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime: %q", s)
}

// isNumericString checks if a string contains only digits and optional leading minus.
func isNumericString(s string) bool {
	if len(s) == 0 {
		return false
	}
	start := 0
	if s[0] == '-' {
		start = 1
	}
	for i := start; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return start < len(s)
}

// parseUnixTimestamp parses a numeric string as Unix timestamp.
// Handles seconds, milliseconds, and nanoseconds based on magnitude:
//   - Seconds: up to 1e11
//   - Milliseconds: from 1e11 to 1e16
//   - Nanoseconds: above 1e16
func parseUnixTimestamp(s string) (time.Time, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, false
	}

	absN := n
	if absN < 0 {
		absN = -absN
	}

	switch {
	case absN > 1e16:
		return time.Unix(0, n).UTC(), true
	case absN > 1e11:
		return time.Unix(n/1000, (n%1000)*1e6).UTC(), true
	default:
		return time.Unix(n, 0).UTC(), true
	}
}
