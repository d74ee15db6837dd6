/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// RoundDates returns the meeting date of each of rounds rounds, the first
// on start and each following one everyDays later. A zero start yields nil.
func RoundDates(start time.Time, everyDays int, rounds int) []time.Time {
	if start.IsZero() || rounds <= 0 {
		return nil
	}
	if everyDays <= 0 {
		everyDays = 7
	}

	dates := make([]time.Time, rounds)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i*everyDays)
	}
	return dates
}
