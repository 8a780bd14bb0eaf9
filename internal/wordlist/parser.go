// Package wordlist reads tab-delimited vocabulary exports.
//
// Each line holds at least five columns: an id that is ignored, the
// source-language term, an example for it, the translation, and an
// example for the translation. An audio file may be referenced anywhere on
// the line with an Anki-style [sound:file.mp3] marker.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/wortbox/internal/domain"
)

const (
	minColumns  = 5
	soundPrefix = "[sound:"
	soundSuffix = "]"
)

const (
	colFront = iota + 1
	colFrontExample
	colBack
	colBackExample
)

// LineError describes a line that could not be turned into a card.
type LineError struct {
	Line   int
	Reason string
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Result holds the parsed cards and the lines that were skipped.
type Result struct {
	Cards   []domain.Card
	Skipped []LineError
}

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Blank lines are
// ignored; malformed lines are reported in Result.Skipped.
func Parse(r io.Reader) (Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var res Result
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		parts := strings.Split(strings.TrimSpace(line), "\t")
		if len(parts) < minColumns {
			res.Skipped = append(res.Skipped, LineError{
				Line:   lineNo,
				Reason: fmt.Sprintf("expected at least %d tab-separated columns, got %d", minColumns, len(parts)),
			})
			continue
		}

		front := strings.TrimSpace(parts[colFront])
		back := strings.TrimSpace(parts[colBack])
		if front == "" || back == "" {
			res.Skipped = append(res.Skipped, LineError{Line: lineNo, Reason: "empty term or translation"})
			continue
		}

		res.Cards = append(res.Cards, domain.NewCard(
			front,
			strings.TrimSpace(parts[colFrontExample]),
			back,
			strings.TrimSpace(parts[colBackExample]),
			AudioRef(parts),
		))
	}

	if err := scanner.Err(); err != nil {
		return Result{}, err
	}
	return res, nil
}

// AudioRef returns the file named by the first [sound:...] marker in the
// columns, or "" if there is none.
func AudioRef(columns []string) string {
	for _, col := range columns {
		i := strings.Index(col, soundPrefix)
		if i < 0 {
			continue
		}
		rest := col[i+len(soundPrefix):]
		if j := strings.Index(rest, soundSuffix); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return ""
}
