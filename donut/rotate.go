/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package donut

import (
	"fmt"
)

// Rotation returns the circle method permutation for n positions:
// [0, n-1, 1, 2, ..., n-2]. Position 0 stays put and every other position
// takes the participant from the position before it.
func Rotation(n int) []int {
	rho := make([]int, n)
	for j := 1; j < n; j++ {
		rho[j] = j - 1
	}
	if n > 1 {
		rho[1] = n - 1
	}

	return rho
}

// Rotate returns a new arrangement with A'[j] = A[rho[j]]. a is not modified.
func Rotate(a Arrangement) Arrangement {
	return permute(a, Rotation(len(a)))
}

func permute(a Arrangement, rho []int) Arrangement {
	next := make(Arrangement, len(a))
	for j, src := range rho {
		next[j] = a[src]
	}

	return next
}

// Scheduler produces one round per call to Next, rotating its arrangement
// after each round. Round k is built from the initial arrangement rotated k
// times.
type Scheduler struct {
	current Arrangement
	rho     []int
	round   int
}

// NewScheduler returns a Scheduler starting from initial, which may be any
// permutation of 0..N-1. initial is copied.
func NewScheduler(initial Arrangement) (*Scheduler, error) {
	if len(initial) < 2 {
		return nil, fmt.Errorf("%w: got %v", ErrDegenerateInput, len(initial))
	}
	if err := checkPermutation(initial); err != nil {
		return nil, err
	}

	return &Scheduler{
		current: initial.Clone(),
		rho:     Rotation(len(initial)),
	}, nil
}

// Next returns the next round of the schedule.
func (s *Scheduler) Next() Round {
	round := Pairs(s.current)
	s.current = permute(s.current, s.rho)
	s.round++

	return round
}

// Arrangement returns a copy of the arrangement the next round is built from.
func (s *Scheduler) Arrangement() Arrangement {
	return s.current.Clone()
}

// Rounds returns how many rounds have been produced so far.
func (s *Scheduler) Rounds() int {
	return s.round
}

// Generate returns exactly t rounds starting from initial. Rounds past the
// repeat free limit are still produced; use a Validator to detect them.
func Generate(initial Arrangement, t int) (Schedule, error) {
	if t < 0 {
		return nil, fmt.Errorf("%w: %v is negative", ErrInvalidRounds, t)
	}
	s, err := NewScheduler(initial)
	if err != nil {
		return nil, err
	}

	sched := make(Schedule, 0, t)
	for len(sched) < t {
		sched = append(sched, s.Next())
	}

	return sched, nil
}

// Capacity returns how many rounds the rotation can produce from initial
// before some pair meets a second time.
func Capacity(initial Arrangement) (int, error) {
	return CapacityWithValidator(NewValidator(), initial)
}

// CapacityWithValidator is Capacity counting the meetings already held by
// v. Rounds checked are recorded in v.
func CapacityWithValidator(v *Validator, initial Arrangement) (int, error) {
	s, err := NewScheduler(initial)
	if err != nil {
		return 0, err
	}

	// the rotation returns to initial after n-1 rounds, so a repeat is
	// always found within n rounds
	for count := 0; count < len(initial); count++ {
		if repeat := v.CheckRound(count, s.Next()); repeat != nil {
			return count, nil
		}
	}

	return len(initial), nil
}

// Plan generates t rounds from initial and validates them. If any pair would
// meet twice no schedule is returned and the error wraps
// ErrScheduleInfeasible.
func Plan(initial Arrangement, t int) (Schedule, error) {
	return PlanWithValidator(NewValidator(), initial, t)
}

// PlanWithValidator is Plan using v, which may already hold meetings from
// earlier runs (see Validator.Seed).
func PlanWithValidator(v *Validator, initial Arrangement,
	t int) (Schedule, error) {

	sched, err := Generate(initial, t)
	if err != nil {
		return nil, err
	}
	if repeat := v.Check(sched); repeat != nil {
		if Validate(sched) {
			// only the meetings v started with are repeated
			return nil, fmt.Errorf("%w: %v (they met before this schedule)",
				ErrScheduleInfeasible, repeat)
		}
		capacity, _ := Capacity(initial)
		return nil, fmt.Errorf("%w: %v (rotation supports %v of %v requested rounds)",
			ErrScheduleInfeasible, repeat, capacity, t)
	}

	return sched, nil
}
