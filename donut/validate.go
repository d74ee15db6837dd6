/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package donut

import (
	"fmt"
)

// Repeat describes the first pair found meeting for a second time.
type Repeat struct {
	Round int
	Group Group
	A     Participant
	B     Participant
}

func (r Repeat) String() string {
	return fmt.Sprintf("participants %v and %v meet again in round %v",
		r.A, r.B, r.Round)
}

type participantSet map[Participant]struct{}

// Validator tracks, for every participant, the set of participants it has
// already been grouped with. Each participant's set includes itself, so a
// group member with more than one overlap has met someone in the group
// before. A Validator is not safe for concurrent use.
type Validator struct {
	coMet map[Participant]participantSet
}

func NewValidator() *Validator {
	return &Validator{
		coMet: make(map[Participant]participantSet),
	}
}

func (v *Validator) met(p Participant) participantSet {
	set, ok := v.coMet[p]
	if !ok {
		set = participantSet{p: {}}
		v.coMet[p] = set
	}

	return set
}

// Seed records that a and b have already met, e.g. in an earlier run.
func (v *Validator) Seed(a, b Participant) {
	v.met(a)[b] = struct{}{}
	v.met(b)[a] = struct{}{}
}

// Check processes the rounds of s in order and returns the first repeated
// meeting, or nil if there is none. Meetings in s are recorded as they are
// checked.
func (v *Validator) Check(s Schedule) *Repeat {
	for idx, round := range s {
		if repeat := v.CheckRound(idx, round); repeat != nil {
			return repeat
		}
	}

	return nil
}

// CheckRound is Check for a single round; idx is reported in the Repeat.
func (v *Validator) CheckRound(idx int, round Round) *Repeat {
	for _, group := range round {
		for _, m := range group {
			met := v.met(m)
			dupes := 0
			var other Participant
			for _, g := range group {
				if _, ok := met[g]; ok {
					dupes++
					if g != m {
						other = g
					}
				}
			}
			if dupes > 1 {
				return &Repeat{Round: idx, Group: group, A: m, B: other}
			}
			for _, g := range group {
				met[g] = struct{}{}
			}
		}
	}

	return nil
}

// Validate reports whether no two participants share a group in more than
// one round of s.
func Validate(s Schedule) bool {
	return NewValidator().Check(s) == nil
}
