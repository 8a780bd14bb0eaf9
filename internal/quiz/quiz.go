// Package quiz builds multiple-choice quizzes from learned cards.
package quiz

import (
	"math/rand/v2"

	"github.com/conorfennell/wortbox/internal/domain"
)

const (
	// DefaultQuestions is used when the caller does not ask for a size.
	DefaultQuestions = 10
	distractors      = 3
)

// Option is one answer choice.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question asks for the meaning of a card's front text.
type Question struct {
	CardID  int64    `json:"card_id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// Generate draws up to maxQuestions learned cards and builds a question for
// each. Wrong options are other cards' back texts, taken from the whole deck.
func Generate(cards []domain.Card, maxQuestions int, rng *rand.Rand) ([]Question, error) {
	if maxQuestions <= 0 {
		maxQuestions = DefaultQuestions
	}

	var learned []domain.Card
	for _, c := range cards {
		if c.Learned() {
			learned = append(learned, c)
		}
	}
	if len(learned) == 0 {
		return nil, domain.ErrNoLearnedCards
	}

	// Distinct answers in deck order, so sampling does not favour words
	// that occur twice.
	seen := make(map[string]bool, len(cards))
	var answers []string
	for _, c := range cards {
		if !seen[c.BackText] {
			seen[c.BackText] = true
			answers = append(answers, c.BackText)
		}
	}

	picked := sample(learned, min(len(learned), maxQuestions), rng)
	questions := make([]Question, 0, len(picked))
	for _, c := range picked {
		questions = append(questions, build(c, answers, rng))
	}
	return questions, nil
}

func build(c domain.Card, answers []string, rng *rand.Rand) Question {
	candidates := make([]string, 0, len(answers))
	for _, a := range answers {
		if a != c.BackText {
			candidates = append(candidates, a)
		}
	}

	options := []Option{{Text: c.BackText, IsCorrect: true}}
	for _, a := range sample(candidates, min(len(candidates), distractors), rng) {
		options = append(options, Option{Text: a})
	}
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		CardID:  c.ID,
		Prompt:  c.FrontText,
		Options: options,
	}
}

// sample returns k elements of items chosen uniformly without replacement.
// items is not modified.
func sample[T any](items []T, k int, rng *rand.Rand) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	for i := range k {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
