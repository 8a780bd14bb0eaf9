package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/wortbox/internal/domain"
)

// Normalize concatenates the card's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each field
// before joining them. Review state and audio are not content.
func Normalize(card domain.Card) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	parts := []string{
		normalizePart(card.FrontText),
		normalizePart(card.FrontExample),
		normalizePart(card.BackText),
		normalizePart(card.BackExample),
	}

	// Tabs never survive the wordlist format, so they separate fields safely.
	return strings.Join(parts, "\t")
}

// Hash takes a card, normalizes it, and returns its SHA-256 hash as a hex string.
func Hash(card domain.Card) string {
	normalized := Normalize(card)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
