// Package importer loads a wordlist into an empty deck.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/gitsource"
	"github.com/conorfennell/wortbox/internal/wordlist"
)

// Store is what the importer needs from the card store.
type Store interface {
	CountCards(ctx context.Context) (int, error)
	InsertCards(ctx context.Context, cards []domain.Card) (int, error)
}

// Options selects the wordlist to import.
type Options struct {
	// File is the wordlist path, relative to the repository checkout when
	// Repo is set.
	File string
	// Repo is an optional git URL to clone or pull before reading File.
	Repo string
	// ReposDir holds repository checkouts.
	ReposDir string
	// Force imports even when the deck already has cards.
	Force bool
	// Progress receives git progress output; nil discards it.
	Progress io.Writer
}

// Report summarizes an import run.
type Report struct {
	Path     string
	Parsed   int
	Inserted int
	Skipped  []wordlist.LineError
	// AlreadyLoaded is set when the deck had cards and nothing was read.
	AlreadyLoaded bool
	Existing      int
}

// syncRepo is a seam for tests.
var syncRepo = gitsource.Sync

// Run imports the wordlist described by opts into store.
func Run(ctx context.Context, store Store, opts Options) (Report, error) {
	existing, err := store.CountCards(ctx)
	if err != nil {
		return Report{}, err
	}
	if existing > 0 && !opts.Force {
		slog.InfoContext(ctx, "Deck already has cards, skipping import", "cards", existing)
		return Report{AlreadyLoaded: true, Existing: existing}, nil
	}

	path, err := resolve(ctx, opts)
	if err != nil {
		return Report{}, err
	}

	parsed, err := wordlist.ParseFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("reading wordlist %s: %w", path, err)
	}
	for _, skipped := range parsed.Skipped {
		slog.WarnContext(ctx, "Skipping line", "path", path, "line", skipped.Line, "reason", skipped.Reason)
	}

	inserted, err := store.InsertCards(ctx, parsed.Cards)
	if err != nil {
		return Report{}, fmt.Errorf("storing cards from %s: %w", path, err)
	}

	rep := Report{
		Path:     path,
		Parsed:   len(parsed.Cards),
		Inserted: inserted,
		Skipped:  parsed.Skipped,
		Existing: existing,
	}
	slog.InfoContext(ctx, "Import complete",
		"path", path,
		"parsed_cards", rep.Parsed,
		"inserted", rep.Inserted,
		"duplicates", rep.Parsed-rep.Inserted,
		"skipped_lines", len(rep.Skipped),
	)
	return rep, nil
}

func resolve(ctx context.Context, opts Options) (string, error) {
	if opts.Repo == "" {
		if opts.File == "" {
			return "", errors.New("no wordlist file given")
		}
		return opts.File, nil
	}

	local, err := gitsource.LocalPath(opts.ReposDir, opts.Repo)
	if err != nil {
		return "", err
	}
	if err := syncRepo(ctx, opts.Repo, local, opts.Progress); err != nil {
		return "", err
	}
	if opts.File == "" {
		return "", fmt.Errorf("no wordlist file given for repository %s", opts.Repo)
	}

	path := filepath.Join(local, opts.File)
	if rel, err := filepath.Rel(local, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("wordlist %s is outside the repository", opts.File)
	}
	return path, nil
}
