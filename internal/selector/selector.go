// Package selector picks the next card to study.
package selector

import (
	"math/rand/v2"

	"github.com/conorfennell/wortbox/internal/domain"
)

// Due returns the cards whose review time has passed.
func Due(now int64, cards []domain.Card) []domain.Card {
	var due []domain.Card
	for _, c := range cards {
		if c.NextReviewAt < now {
			due = append(due, c)
		}
	}
	return due
}

// Next chooses the card to present at now.
//
// Among due cards the lowest box wins and ties are broken uniformly at
// random. If nothing is due, any card may be picked so study can go on.
// The boolean is false only when cards is empty.
func Next(now int64, cards []domain.Card, rng *rand.Rand) (domain.Card, bool) {
	if len(cards) == 0 {
		return domain.Card{}, false
	}

	// Reservoir sampling over the lowest-box due cards.
	var (
		pick    domain.Card
		lowest  int
		matches int
	)
	for _, c := range cards {
		if c.NextReviewAt >= now {
			continue
		}
		switch {
		case matches == 0 || c.Box < lowest:
			pick, lowest, matches = c, c.Box, 1
		case c.Box == lowest:
			matches++
			if rng.IntN(matches) == 0 {
				pick = c
			}
		}
	}
	if matches > 0 {
		return pick, true
	}

	return cards[rng.IntN(len(cards))], true
}
