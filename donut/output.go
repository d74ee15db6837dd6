/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package donut

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

func groupNames(g Group, names []string) ([]string, error) {
	ret := make([]string, 0, len(g))
	for _, p := range g {
		if p < 0 || int(p) >= len(names) {
			return nil, fmt.Errorf("participant %v has no name (%v names)",
				p, len(names))
		}
		ret = append(ret, names[p])
	}

	return ret, nil
}

// WriteCSV writes one row per group of s: the 0-based round index, the
// round's date when dates is non-nil, then up to 3 participant names.
// names[p] is the name of participant p.
func WriteCSV(w io.Writer, s Schedule, names []string,
	dates []time.Time) error {

	cw := csv.NewWriter(w)

	header := []string{"Match"}
	if dates != nil {
		header = append(header, "Date")
	}
	header = append(header, "Person 1", "Person 2", "Person 3")
	if err := cw.Write(header); err != nil {
		return err
	}

	for idx, round := range s {
		for _, g := range round {
			gn, err := groupNames(g, names)
			if err != nil {
				return fmt.Errorf("round %v: %w", idx, err)
			}
			row := []string{strconv.Itoa(idx)}
			if dates != nil {
				row = append(row, roundDate(dates, idx))
			}
			row = append(row, gn...)
			for len(row) < len(header) {
				row = append(row, "")
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func roundDate(dates []time.Time, idx int) string {
	if idx >= len(dates) || dates[idx].IsZero() {
		return ""
	}

	return dates[idx].Format(dateLayout)
}

// BuildScheduleOutput formats each round of s as an aligned table
func BuildScheduleOutput(s Schedule, names []string,
	dates []time.Time) string {

	var sb strings.Builder
	if len(s) == 0 {
		sb.WriteString("No rounds scheduled\n")
		return sb.String()
	}

	for idx, round := range s {
		type row struct{ group, people string }
		var rows []row
		for gIdx, g := range round {
			gn, err := groupNames(g, names)
			if err != nil {
				gn = []string{err.Error()}
			}
			rows = append(rows, row{
				group:  fmt.Sprintf("%d.", gIdx+1),
				people: strings.Join(gn, ", "),
			})
		}

		// Compute column widths
		maxG, maxP := len("Group"), len("Participants")
		for _, r := range rows {
			if l := len(r.group); l > maxG {
				maxG = l
			}
			if l := len(r.people); l > maxP {
				maxP = l
			}
		}

		if d := roundDate(dates, idx); d != "" {
			sb.WriteString(fmt.Sprintf("Round %d (%s)\n", idx+1, d))
		} else {
			sb.WriteString(fmt.Sprintf("Round %d\n", idx+1))
		}
		sb.WriteString(fmt.Sprintf("%-*s  %-*s\n", maxG, "Group", maxP,
			"Participants"))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("%-*s  %-*s\n", maxG, r.group, maxP,
				r.people))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
