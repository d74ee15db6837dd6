/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package history

import (
	"sort"
	"time"

	"github.com/mikeb26/donuts/donut"
)

// History records, by participant name, who has already met whom in
// earlier pairing runs. Names rather than indices are kept because every
// run shuffles and may add or drop participants.
type History struct {
	Seen    map[string]map[string]bool `json:"seen"`
	Runs    int                        `json:"runs"`
	Updated time.Time                  `json:"updated"`
}

func New() *History {
	return &History{
		Seen: make(map[string]map[string]bool),
	}
}

func (h *History) mark(a, b string) {
	if h.Seen == nil {
		h.Seen = make(map[string]map[string]bool)
	}
	set, ok := h.Seen[a]
	if !ok {
		set = make(map[string]bool)
		h.Seen[a] = set
	}
	set[b] = true
}

// Record notes that a and b have met
func (h *History) Record(a, b string) {
	if a == b {
		return
	}
	h.mark(a, b)
	h.mark(b, a)
}

// Met reports whether a and b have met
func (h *History) Met(a, b string) bool {
	return h.Seen[a][b]
}

// RecordSchedule marks every pair grouped together in s as met. names[p]
// is the name of participant p.
func (h *History) RecordSchedule(names []string, s donut.Schedule) {
	for _, round := range s {
		for _, g := range round {
			for i := 0; i < len(g); i++ {
				for j := i + 1; j < len(g); j++ {
					if int(g[i]) < len(names) && int(g[j]) < len(names) {
						h.Record(names[g[i]], names[g[j]])
					}
				}
			}
		}
	}
	h.Runs++
	h.Updated = time.Now().UTC()
}

// Pairs returns every recorded meeting once, as sorted name pairs.
func (h *History) Pairs() [][2]string {
	var pairs [][2]string
	for a, set := range h.Seen {
		for b := range set {
			if a < b {
				pairs = append(pairs, [2]string{a, b})
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	return pairs
}

// Validator returns a donut.Validator that already holds every recorded
// meeting between the participants in names, so that a new schedule
// repeating one of them is rejected.
func (h *History) Validator(names []string) *donut.Validator {
	v := donut.NewValidator()
	index := make(map[string]donut.Participant, len(names))
	for i, name := range names {
		index[name] = donut.Participant(i)
	}
	for _, pair := range h.Pairs() {
		a, okA := index[pair[0]]
		b, okB := index[pair[1]]
		if okA && okB {
			v.Seed(a, b)
		}
	}

	return v
}

// Merge adds every meeting recorded in other to h
func (h *History) Merge(other *History) {
	for _, pair := range other.Pairs() {
		h.Record(pair[0], pair[1])
	}
	if other.Runs > h.Runs {
		h.Runs = other.Runs
	}
	if other.Updated.After(h.Updated) {
		h.Updated = other.Updated
	}
}

// SeedGroups records in v that every two members of each group have
// already met, so no schedule checked by v pairs them. Members missing
// from names are ignored.
func SeedGroups(v *donut.Validator, names []string, groups [][]string) {
	index := make(map[string]donut.Participant, len(names))
	for i, name := range names {
		index[name] = donut.Participant(i)
	}
	for _, group := range groups {
		for i := 0; i < len(group); i++ {
			a, okA := index[group[i]]
			for j := i + 1; j < len(group); j++ {
				b, okB := index[group[j]]
				if okA && okB && a != b {
					v.Seed(a, b)
				}
			}
		}
	}
}
