/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package donut

// Pairs matches each participant from the front of the arrangement with the
// one at the same distance from the back, working inwards. For an odd sized
// arrangement the middle participant joins the first pair, making it a
// triple. Fewer than 2 participants yield an empty round.
func Pairs(a Arrangement) Round {
	n := len(a)
	round := make(Round, 0, n/2)
	for i := 0; i < n/2; i++ {
		round = append(round, Group{a[i], a[n-1-i]})
	}
	if n%2 == 1 && len(round) > 0 {
		round[0] = append(round[0], a[n/2])
	}

	return round
}
