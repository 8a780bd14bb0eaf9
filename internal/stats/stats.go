// Package stats summarizes learning progress over the deck.
package stats

import "github.com/conorfennell/wortbox/internal/domain"

// Entry is the per-card line of the stats listing.
type Entry struct {
	ID        int64         `json:"id"`
	FrontText string        `json:"front_text"`
	BackText  string        `json:"back_text"`
	Status    domain.Status `json:"status"`
}

// Stats counts cards per status.
type Stats struct {
	Total    int     `json:"total"`
	New      int     `json:"new"`
	Learning int     `json:"learning"`
	Known    int     `json:"known"`
	Cards    []Entry `json:"cards"`
}

// Classify returns the status of a single card. A card in box 1 that has
// been reviewed at least once is still being learned.
func Classify(c domain.Card) domain.Status {
	switch {
	case c.Box > domain.MinBox:
		return domain.StatusKnown
	case c.NextReviewAt > 0:
		return domain.StatusLearning
	default:
		return domain.StatusNew
	}
}

// Compute classifies every card, keeping input order in the listing.
func Compute(cards []domain.Card) Stats {
	s := Stats{
		Total: len(cards),
		Cards: make([]Entry, 0, len(cards)),
	}
	for _, c := range cards {
		status := Classify(c)
		switch status {
		case domain.StatusKnown:
			s.Known++
		case domain.StatusLearning:
			s.Learning++
		default:
			s.New++
		}
		s.Cards = append(s.Cards, Entry{
			ID:        c.ID,
			FrontText: c.FrontText,
			BackText:  c.BackText,
			Status:    status,
		})
	}
	return s
}
