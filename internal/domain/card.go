package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Box bounds of the Leitner scheme. Box 1 holds new or hard words, box 5
// holds mastered ones.
const (
	MinBox = 1
	MaxBox = 5
)

// Card is a single vocabulary entry together with its review state.
// Only Box and NextReviewAt change after creation.
type Card struct {
	ID           int64  `json:"id"`
	FrontText    string `json:"front_text"`
	FrontExample string `json:"front_example"`
	BackText     string `json:"back_text"`
	BackExample  string `json:"back_example"`
	AudioRef     string `json:"audio_ref"`
	Box          int    `json:"box"`
	NextReviewAt int64  `json:"next_review_at"` // epoch seconds, 0 = due immediately
}

// NewCard returns a card in its initial review state.
func NewCard(front, frontExample, back, backExample, audio string) Card {
	return Card{
		FrontText:    front,
		FrontExample: frontExample,
		BackText:     back,
		BackExample:  backExample,
		AudioRef:     audio,
		Box:          MinBox,
		NextReviewAt: 0,
	}
}

// Learned reports whether the card has left the first box.
func (c Card) Learned() bool {
	return c.Box > MinBox
}

// Outcome is the result of a single review.
type Outcome int

const (
	Correct Outcome = iota + 1
	Wrong
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Wrong:
		return "wrong"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Valid reports whether o is one of the two known outcomes.
func (o Outcome) Valid() bool {
	return o == Correct || o == Wrong
}

// ParseOutcome converts the wire representation of an outcome.
// Anything other than "correct" or "wrong" is rejected.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "correct":
		return Correct, nil
	case "wrong":
		return Wrong, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// CheckState reports whether a review state is storable: box in [MinBox, MaxBox]
// and a non-negative review time.
func CheckState(box int, nextReviewAt int64) error {
	if box < MinBox || box > MaxBox {
		return fmt.Errorf("%w: box %d outside [%d, %d]", ErrInvalidState, box, MinBox, MaxBox)
	}
	if nextReviewAt < 0 {
		return fmt.Errorf("%w: negative review time %d", ErrInvalidState, nextReviewAt)
	}
	return nil
}

// Status classifies a card for the stats view.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusKnown    Status = "known"
)

var (
	ErrNotFound       = errors.New("card not found")
	ErrNoLearnedCards = errors.New("no learned cards")
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrEmptyStore     = errors.New("no cards found")
	ErrInvalidState   = errors.New("invalid review state")
)
