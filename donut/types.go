/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package donut

import (
	"errors"
	"fmt"
)

var (
	ErrDegenerateInput    = errors.New("at least 2 participants are required")
	ErrInvalidArrangement = errors.New("invalid arrangement")
	ErrInvalidRounds      = errors.New("invalid round count")
	ErrScheduleInfeasible = errors.New("schedule repeats a pairing")
)

// Participant is an index into the caller's list of participant names
type Participant int

// Arrangement is an ordering of every participant 0..N-1
type Arrangement []Participant

// Group is the set of participants meeting together in one round. It holds
// 2 participants, or 3 for the single triple of an odd sized round.
type Group []Participant

// Round is a partition of every participant into groups
type Round []Group

// Schedule is the ordered list of rounds for a run
type Schedule []Round

// Identity returns the arrangement 0,1,...,n-1. A negative n yields an
// empty arrangement.
func Identity(n int) Arrangement {
	if n < 0 {
		n = 0
	}
	a := make(Arrangement, n)
	for i := range a {
		a[i] = Participant(i)
	}

	return a
}

// Clone returns a copy of a that shares no storage with it.
func (a Arrangement) Clone() Arrangement {
	return append(Arrangement(nil), a...)
}

// checkPermutation returns ErrInvalidArrangement unless a holds each of
// 0..len(a)-1 exactly once.
func checkPermutation(a Arrangement) error {
	seen := make([]bool, len(a))
	for pos, p := range a {
		if p < 0 || int(p) >= len(a) {
			return fmt.Errorf("%w: participant %v at position %v out of range [0,%v)",
				ErrInvalidArrangement, p, pos, len(a))
		}
		if seen[p] {
			return fmt.Errorf("%w: participant %v appears more than once",
				ErrInvalidArrangement, p)
		}
		seen[p] = true
	}

	return nil
}

// IsTriple reports whether g is the odd round's group of three
func (g Group) IsTriple() bool { return len(g) == 3 }

// MaxRounds returns the most rounds a single round-robin cycle over n
// participants can hold before some pair must meet twice: n-1 for even n
// and n for odd n. Capacity reports what the rotation actually achieves
// for a given arrangement, which for odd n is lower.
func MaxRounds(n int) int {
	if n < 2 {
		return 0
	}
	if n%2 == 0 {
		return n - 1
	}

	return n
}
