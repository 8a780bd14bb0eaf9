package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/knol"
)

// Memory is a card store kept in process memory. It follows the same
// contract as DB and is lost on exit.
type Memory struct {
	mu     sync.RWMutex
	cards  map[int64]domain.Card
	hashes map[string]bool
	nextID int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cards:  make(map[int64]domain.Card),
		hashes: make(map[string]bool),
		nextID: 1,
	}
}

// GetCard retrieves a card by its id.
func (m *Memory) GetCard(_ context.Context, id int64) (domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cards[id]
	if !ok {
		return domain.Card{}, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// ListCards returns every card ordered by id.
func (m *Memory) ListCards(_ context.Context) ([]domain.Card, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cards := make([]domain.Card, 0, len(m.cards))
	for _, c := range m.cards {
		cards = append(cards, c)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

// CountCards returns the number of stored cards.
func (m *Memory) CountCards(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cards), nil
}

// UpdateReviewState overwrites a card's box and next review time.
func (m *Memory) UpdateReviewState(_ context.Context, id int64, box int, nextReviewAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setState(id, box, nextReviewAt)
}

// UpdateCard applies fn to the current card state under the write lock.
func (m *Memory) UpdateCard(_ context.Context, id int64, fn func(domain.Card) (int, int64, error)) (domain.Card, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.cards[id]
	if !ok {
		return domain.Card{}, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	box, next, err := fn(c)
	if err != nil {
		return domain.Card{}, err
	}
	if err := m.setState(id, box, next); err != nil {
		return domain.Card{}, err
	}
	return m.cards[id], nil
}

func (m *Memory) setState(id int64, box int, nextReviewAt int64) error {
	if err := domain.CheckState(box, nextReviewAt); err != nil {
		return err
	}
	c, ok := m.cards[id]
	if !ok {
		return fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	c.Box, c.NextReviewAt = box, nextReviewAt
	m.cards[id] = c
	return nil
}

// InsertCards adds cards, assigning ids, and skips content already stored.
// Either all valid cards are added or none are.
func (m *Memory) InsertCards(_ context.Context, cards []domain.Card) (int, error) {
	for _, c := range cards {
		if err := domain.CheckState(c.Box, c.NextReviewAt); err != nil {
			return 0, fmt.Errorf("card %q: %w", c.FrontText, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var inserted int
	for _, c := range cards {
		h := knol.Hash(c)
		if m.hashes[h] {
			continue
		}
		m.hashes[h] = true
		c.ID = m.nextID
		m.nextID++
		m.cards[c.ID] = c
		inserted++
	}
	return inserted, nil
}
