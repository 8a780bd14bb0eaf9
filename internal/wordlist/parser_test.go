package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedCards   int
		expectedSkipped int
		expectedFront   string
		expectedBack    string
		expectedAudio   string
	}{
		{
			name:          "Single line with audio",
			input:         "1\tder Hund\tDer Hund bellt.\tthe dog\tThe dog barks.\t[sound:hund.mp3]",
			expectedCards: 1,
			expectedFront: "der Hund",
			expectedBack:  "the dog",
			expectedAudio: "hund.mp3",
		},
		{
			name:          "Audio marker inside an example column",
			input:         "7\tdie Katze\tDie Katze schläft.\tthe cat\tThe cat sleeps. [sound:katze.mp3]",
			expectedCards: 1,
			expectedFront: "die Katze",
			expectedBack:  "the cat",
			expectedAudio: "katze.mp3",
		},
		{
			name:          "No audio",
			input:         "2\tdas Haus\tDas Haus ist groß.\tthe house\tThe house is big.",
			expectedCards: 1,
			expectedFront: "das Haus",
			expectedBack:  "the house",
			expectedAudio: "",
		},
		{
			name: "Two lines and a blank line",
			input: `1	eins	Eins und zwei.	one	One and two.

2	zwei	Zwei und drei.	two	Two and three.
`,
			expectedCards: 2,
		},
		{
			name:            "Too few columns",
			input:           "1\tkaputt\tbroken",
			expectedCards:   0,
			expectedSkipped: 1,
		},
		{
			name:            "Empty translation",
			input:           "1\tleer\tLeer.\t \tEmpty.",
			expectedCards:   0,
			expectedSkipped: 1,
		},
		{
			name:          "Windows line endings",
			input:         "1\tja\tJa, bitte.\tyes\tYes, please.\r\n",
			expectedCards: 1,
			expectedFront: "ja",
			expectedBack:  "yes",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse() returned an unexpected error: %v", err)
			}

			if len(res.Cards) != tc.expectedCards {
				t.Fatalf("Expected %d cards, but got %d", tc.expectedCards, len(res.Cards))
			}
			if len(res.Skipped) != tc.expectedSkipped {
				t.Fatalf("Expected %d skipped lines, but got %d", tc.expectedSkipped, len(res.Skipped))
			}

			if tc.expectedCards == 1 {
				card := res.Cards[0]
				if card.FrontText != tc.expectedFront {
					t.Errorf("Expected FrontText to be '%s', but got '%s'", tc.expectedFront, card.FrontText)
				}
				if card.BackText != tc.expectedBack {
					t.Errorf("Expected BackText to be '%s', but got '%s'", tc.expectedBack, card.BackText)
				}
				if card.AudioRef != tc.expectedAudio {
					t.Errorf("Expected AudioRef to be '%s', but got '%s'", tc.expectedAudio, card.AudioRef)
				}
				if card.Box != 1 || card.NextReviewAt != 0 {
					t.Errorf("Expected a fresh card, got box %d next %d", card.Box, card.NextReviewAt)
				}
			}
		})
	}
}

func TestParse_SkippedLineNumbers(t *testing.T) {
	input := "1\ta\tA.\tb\tB.\nbroken\n3\tc\tC.\td\tD.\n"
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() returned an unexpected error: %v", err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Line != 2 {
		t.Fatalf("Expected line 2 to be skipped, got %v", res.Skipped)
	}
	if !strings.Contains(res.Skipped[0].Error(), "line 2") {
		t.Errorf("Expected error text to name the line, got %q", res.Skipped[0].Error())
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A1.txt")
	if err := os.WriteFile(path, []byte("1\tgut\tSehr gut.\tgood\tVery good.\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile() returned an unexpected error: %v", err)
	}
	if len(res.Cards) != 1 {
		t.Fatalf("Expected 1 card, got %d", len(res.Cards))
	}

	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestAudioRef(t *testing.T) {
	if got := AudioRef([]string{"a", "b [sound:x.mp3] c"}); got != "x.mp3" {
		t.Errorf("Expected x.mp3, got %q", got)
	}
	if got := AudioRef([]string{"[sound:unterminated.mp3"}); got != "unterminated.mp3" {
		t.Errorf("Expected unterminated.mp3, got %q", got)
	}
	if got := AudioRef([]string{"nothing here"}); got != "" {
		t.Errorf("Expected empty audio ref, got %q", got)
	}
}
