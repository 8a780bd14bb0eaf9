package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/wortbox/internal/domain"
	"github.com/conorfennell/wortbox/internal/knol"
	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time, and an in-memory database exists
	// only on the connection that created it.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	return New(conn), nil
}

// New wraps an already open connection whose schema is in place.
func New(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

const cardColumns = `id, front_text, front_example, back_text, back_example, audio_ref, box, next_review_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (domain.Card, error) {
	var c domain.Card
	err := row.Scan(
		&c.ID,
		&c.FrontText,
		&c.FrontExample,
		&c.BackText,
		&c.BackExample,
		&c.AudioRef,
		&c.Box,
		&c.NextReviewAt,
	)
	return c, err
}

// GetCard retrieves a card by its id.
func (db *DB) GetCard(ctx context.Context, id int64) (domain.Card, error) {
	return getCard(ctx, db.conn, id)
}

func getCard(ctx context.Context, q DBTX, id int64) (domain.Card, error) {
	row := q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Card{}, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
		}
		return domain.Card{}, fmt.Errorf("failed to get card %d: %w", id, err)
	}
	return c, nil
}

// ListCards retrieves every card ordered by id.
func (db *DB) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows: %w", err)
	}
	return cards, nil
}

// CountCards returns the number of stored cards.
func (db *DB) CountCards(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

// UpdateReviewState overwrites a card's box and next review time.
func (db *DB) UpdateReviewState(ctx context.Context, id int64, box int, nextReviewAt int64) error {
	return updateReviewState(ctx, db.conn, id, box, nextReviewAt)
}

func updateReviewState(ctx context.Context, q DBTX, id int64, box int, nextReviewAt int64) error {
	if err := domain.CheckState(box, nextReviewAt); err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE cards
		SET box = ?, next_review_at = ?
		WHERE id = ?
	`, box, nextReviewAt, id)
	if err != nil {
		return fmt.Errorf("failed to update review state for card %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for card %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// UpdateCard reads a card, lets fn compute its new review state and writes
// the result back, all in one transaction. Concurrent reviews of the same
// card therefore cannot overwrite each other.
func (db *DB) UpdateCard(ctx context.Context, id int64, fn func(domain.Card) (int, int64, error)) (domain.Card, error) {
	var updated domain.Card
	err := withTx(ctx, db.conn, func(ctx context.Context, tx DBTX) error {
		c, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		box, next, err := fn(c)
		if err != nil {
			return err
		}
		if err := updateReviewState(ctx, tx, id, box, next); err != nil {
			return err
		}
		c.Box, c.NextReviewAt = box, next
		updated = c
		return nil
	})
	if err != nil {
		return domain.Card{}, err
	}
	return updated, nil
}

// InsertCards stores new cards in a single transaction and returns how many
// were added. A card whose content is already stored is skipped.
func (db *DB) InsertCards(ctx context.Context, cards []domain.Card) (int, error) {
	var inserted int
	err := withTx(ctx, db.conn, func(ctx context.Context, tx DBTX) error {
		for _, c := range cards {
			if err := domain.CheckState(c.Box, c.NextReviewAt); err != nil {
				return fmt.Errorf("card %q: %w", c.FrontText, err)
			}
			res, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO cards
					(front_text, front_example, back_text, back_example, audio_ref, box, next_review_at, content_hash)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`,
				c.FrontText,
				c.FrontExample,
				c.BackText,
				c.BackExample,
				c.AudioRef,
				c.Box,
				c.NextReviewAt,
				knol.Hash(c),
			)
			if err != nil {
				return fmt.Errorf("failed to insert card %q: %w", c.FrontText, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read affected rows for card %q: %w", c.FrontText, err)
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
