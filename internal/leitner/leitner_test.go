package leitner

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conorfennell/wortbox/internal/domain"
)

func TestDelay(t *testing.T) {
	testCases := []struct {
		box  int
		want time.Duration
	}{
		{1, 60 * time.Second},
		{2, 600 * time.Second},
		{3, 86400 * time.Second},
		{4, 259200 * time.Second},
		{5, 604800 * time.Second},
		{0, 60 * time.Second},
		{9, 60 * time.Second},
	}
	for _, tc := range testCases {
		if got := Delay(tc.box); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.box, got, tc.want)
		}
	}
}

func TestApply(t *testing.T) {
	t.Run("Correct from box 3", func(t *testing.T) {
		box, next, err := Apply(3, domain.Correct, 1000)
		if err != nil {
			t.Fatalf("Apply returned an unexpected error: %v", err)
		}
		if box != 4 || next != 260200 {
			t.Errorf("Expected (4, 260200), got (%d, %d)", box, next)
		}
	})

	t.Run("Wrong from box 5", func(t *testing.T) {
		box, next, err := Apply(5, domain.Wrong, 500)
		if err != nil {
			t.Fatalf("Apply returned an unexpected error: %v", err)
		}
		if box != 1 || next != 500 {
			t.Errorf("Expected (1, 500), got (%d, %d)", box, next)
		}
	})

	t.Run("Correct in box 5 stays in box 5", func(t *testing.T) {
		box, next, err := Apply(5, domain.Correct, 0)
		if err != nil {
			t.Fatalf("Apply returned an unexpected error: %v", err)
		}
		if box != 5 || next != 604800 {
			t.Errorf("Expected (5, 604800), got (%d, %d)", box, next)
		}
	})

	t.Run("Out of range box is clamped", func(t *testing.T) {
		box, _, err := Apply(42, domain.Correct, 0)
		if err != nil {
			t.Fatalf("Apply returned an unexpected error: %v", err)
		}
		if box != 5 {
			t.Errorf("Expected box 5, got %d", box)
		}
		box, _, _ = Apply(-3, domain.Correct, 0)
		if box != 2 {
			t.Errorf("Expected box 2, got %d", box)
		}
	})

	t.Run("Negative now is treated as zero", func(t *testing.T) {
		_, next, _ := Apply(1, domain.Wrong, -10)
		if next != 0 {
			t.Errorf("Expected next review 0, got %d", next)
		}
	})

	t.Run("Unknown outcome is rejected", func(t *testing.T) {
		_, _, err := Apply(2, domain.Outcome(0), 100)
		if !errors.Is(err, domain.ErrInvalidOutcome) {
			t.Errorf("Expected ErrInvalidOutcome, got %v", err)
		}
	})
}

func TestApplyProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	boxes := gen.IntRange(domain.MinBox, domain.MaxBox)
	times := gen.Int64Range(0, 1<<40)

	properties.Property("correct promotes one box and stays in range", prop.ForAll(
		func(box int, now int64) bool {
			newBox, next, err := Apply(box, domain.Correct, now)
			return err == nil &&
				newBox == min(box+1, domain.MaxBox) &&
				newBox >= domain.MinBox && newBox <= domain.MaxBox &&
				next == now+int64(Delay(newBox)/time.Second)
		},
		boxes, times,
	))

	properties.Property("wrong resets to box 1 due now", prop.ForAll(
		func(box int, now int64) bool {
			newBox, next, err := Apply(box, domain.Wrong, now)
			return err == nil && newBox == 1 && next == now
		},
		boxes, times,
	))

	properties.Property("apply is deterministic", prop.ForAll(
		func(box int, now int64, correct bool) bool {
			outcome := domain.Wrong
			if correct {
				outcome = domain.Correct
			}
			b1, n1, _ := Apply(box, outcome, now)
			b2, n2, _ := Apply(box, outcome, now)
			return b1 == b2 && n1 == n2
		},
		boxes, times, gen.Bool(),
	))

	properties.TestingRun(t)
}
