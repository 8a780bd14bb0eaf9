// Package study exposes the review, quiz and progress operations on top of
// a card store.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/leitner"
	"github.com/conorfennell/wortbox/internal/quiz"
	"github.com/conorfennell/wortbox/internal/selector"
	"github.com/conorfennell/wortbox/internal/stats"
)

// Store is the persistence contract the service needs.
type Store interface {
	ListCards(ctx context.Context) ([]domain.Card, error)
	// UpdateCard must run the read, fn and write atomically for the card.
	UpdateCard(ctx context.Context, id int64, fn func(domain.Card) (int, int64, error)) (domain.Card, error)
}

// DeckSummary is the size of the deck and how much of it is due.
type DeckSummary struct {
	Total int `json:"total"`
	Due   int `json:"due"`
}

// Service holds no card state of its own; every call reads the store.
type Service struct {
	store   Store
	log     *slog.Logger
	now     func() time.Time
	newRand func() *rand.Rand
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the random source factory. It is called once per
// operation that needs randomness.
func WithRand(newRand func() *rand.Rand) Option {
	return func(s *Service) { s.newRand = newRand }
}

func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		log:     log,
		now:     time.Now,
		newRand: seededRand,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NextCard returns the card to study now, preferring due cards in low boxes.
func (s *Service) NextCard(ctx context.Context) (domain.Card, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return domain.Card{}, fmt.Errorf("next card: %w", err)
	}
	c, ok := selector.Next(s.now().Unix(), cards, s.newRand())
	if !ok {
		return domain.Card{}, domain.ErrEmptyStore
	}
	return c, nil
}

// SubmitResult records a review outcome and returns the updated card.
func (s *Service) SubmitResult(ctx context.Context, id int64, outcome domain.Outcome) (domain.Card, error) {
	if !outcome.Valid() {
		return domain.Card{}, fmt.Errorf("%w: %v", domain.ErrInvalidOutcome, outcome)
	}

	now := s.now().Unix()
	var oldBox int
	updated, err := s.store.UpdateCard(ctx, id, func(c domain.Card) (int, int64, error) {
		oldBox = c.Box
		return leitner.Apply(c.Box, outcome, now)
	})
	if err != nil {
		return domain.Card{}, fmt.Errorf("submit result for card %d: %w", id, err)
	}

	s.log.InfoContext(ctx, "review recorded",
		"card_id", id,
		"outcome", outcome.String(),
		"old_box", oldBox,
		"new_box", updated.Box,
		"next_review_at", updated.NextReviewAt,
	)
	return updated, nil
}

// ResetCard puts a card back into its initial state.
func (s *Service) ResetCard(ctx context.Context, id int64) (domain.Card, error) {
	c, err := s.store.UpdateCard(ctx, id, func(domain.Card) (int, int64, error) {
		return domain.MinBox, 0, nil
	})
	if err != nil {
		return domain.Card{}, fmt.Errorf("reset card %d: %w", id, err)
	}
	s.log.InfoContext(ctx, "card reset", "card_id", id)
	return c, nil
}

// Quiz builds up to n multiple-choice questions from learned cards.
func (s *Service) Quiz(ctx context.Context, n int) ([]quiz.Question, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("quiz: %w", err)
	}
	questions, err := quiz.Generate(cards, n, s.newRand())
	if err != nil {
		return nil, err
	}
	s.log.DebugContext(ctx, "quiz generated", "questions", len(questions))
	return questions, nil
}

// Stats classifies every card as new, learning or known.
func (s *Service) Stats(ctx context.Context) (stats.Stats, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return stats.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats.Compute(cards), nil
}

// Deck reports the deck size and the number of due cards.
func (s *Service) Deck(ctx context.Context) (DeckSummary, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return DeckSummary{}, fmt.Errorf("deck: %w", err)
	}
	return DeckSummary{
		Total: len(cards),
		Due:   len(selector.Due(s.now().Unix(), cards)),
	}, nil
}
