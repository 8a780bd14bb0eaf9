// Package leitner implements the five-box Leitner schedule.
package leitner

import (
	"fmt"
	"time"

	"github.com/conorfennell/wortbox/internal/domain"
)

// defaultDelay is used for a box that has no entry in the table.
const defaultDelay = time.Minute

// delays maps a box to the wait before the card is due again.
var delays = map[int]time.Duration{
	1: time.Minute,
	2: 10 * time.Minute,
	3: 24 * time.Hour,
	4: 3 * 24 * time.Hour,
	5: 7 * 24 * time.Hour,
}

// Delay returns how long a card that has just moved into box waits before
// it is due again.
func Delay(box int) time.Duration {
	if d, ok := delays[box]; ok {
		return d
	}
	return defaultDelay
}

// Apply computes the new box and next review time (epoch seconds) for a card
// currently in box that was answered with outcome at now.
//
// A correct answer promotes the card one box, capped at MaxBox. A wrong
// answer sends it back to box 1 and makes it due immediately.
func Apply(box int, outcome domain.Outcome, now int64) (int, int64, error) {
	if now < 0 {
		now = 0
	}
	box = clamp(box)

	switch outcome {
	case domain.Correct:
		newBox := min(box+1, domain.MaxBox)
		return newBox, now + int64(Delay(newBox)/time.Second), nil
	case domain.Wrong:
		return domain.MinBox, now, nil
	default:
		return 0, 0, fmt.Errorf("%w: %v", domain.ErrInvalidOutcome, outcome)
	}
}

func clamp(box int) int {
	return max(domain.MinBox, min(box, domain.MaxBox))
}
