package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/benkyo-app/benkyo/internal/item"
)

// Repository persists full snapshots. The local SQLite file and the cloud
// mirror both satisfy the same load/save contract.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}

// SQLiteRepository stores snapshots in a local SQLite database. Items keep
// their variant payload as JSON next to the columns shared by every category;
// a position column preserves insertion order.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository creates a repository on an open connection.
func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	payload TEXT NOT NULL,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS review_events (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	item_id TEXT NOT NULL,
	correct INTEGER NOT NULL,
	question TEXT NOT NULL DEFAULT '',
	user_answer TEXT NOT NULL DEFAULT '',
	correct_answer TEXT NOT NULL DEFAULT '',
	date TIMESTAMP NOT NULL,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS error_log (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	item_id TEXT NOT NULL DEFAULT '',
	question TEXT NOT NULL DEFAULT '',
	user_answer TEXT NOT NULL DEFAULT '',
	correct_answer TEXT NOT NULL DEFAULT '',
	explanation TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT '',
	needs_srs INTEGER NOT NULL DEFAULT 0,
	planned_review_date TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	date TIMESTAMP NOT NULL,
	position INTEGER NOT NULL
);
`

// Init creates the tables when they do not exist yet.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("db.ExecContext(schema) > %w", err)
	}
	return nil
}

type itemRow struct {
	ID       string `db:"id"`
	Category string `db:"category"`
	Payload  string `db:"payload"`
	Position int    `db:"position"`
}

type reviewEventRow struct {
	ID            string    `db:"id"`
	Category      string    `db:"category"`
	ItemID        string    `db:"item_id"`
	Correct       bool      `db:"correct"`
	Question      string    `db:"question"`
	UserAnswer    string    `db:"user_answer"`
	CorrectAnswer string    `db:"correct_answer"`
	Date          time.Time `db:"date"`
	Position      int       `db:"position"`
}

type errorLogRow struct {
	ID                string    `db:"id"`
	Category          string    `db:"category"`
	ItemID            string    `db:"item_id"`
	Question          string    `db:"question"`
	UserAnswer        string    `db:"user_answer"`
	CorrectAnswer     string    `db:"correct_answer"`
	Explanation       string    `db:"explanation"`
	Source            string    `db:"source"`
	Status            string    `db:"status"`
	NeedsSRS          bool      `db:"needs_srs"`
	PlannedReviewDate string    `db:"planned_review_date"`
	Notes             string    `db:"notes"`
	Date              time.Time `db:"date"`
	Position          int       `db:"position"`
}

// Load reads the full snapshot, preserving insertion order per collection.
// Item rows with an unknown category or broken payload are skipped rather
// than failing the load; the rest of the data is still usable.
func (r *SQLiteRepository) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Items: make(map[item.Category][]item.Item)}

	var itemRows []itemRow
	if err := r.db.SelectContext(ctx, &itemRows, "SELECT * FROM items ORDER BY position"); err != nil {
		return Snapshot{}, fmt.Errorf("db.SelectContext(items) > %w", err)
	}
	for _, row := range itemRows {
		category, err := item.ParseCategory(row.Category)
		if err != nil {
			continue
		}
		it, err := item.Unmarshal(category, []byte(row.Payload))
		if err != nil {
			continue
		}
		snap.Items[category] = append(snap.Items[category], it)
	}

	var eventRows []reviewEventRow
	if err := r.db.SelectContext(ctx, &eventRows, "SELECT * FROM review_events ORDER BY position"); err != nil {
		return Snapshot{}, fmt.Errorf("db.SelectContext(review_events) > %w", err)
	}
	for _, row := range eventRows {
		snap.ReviewEvents = append(snap.ReviewEvents, item.ReviewEvent{
			ID:            row.ID,
			Category:      item.Category(row.Category),
			ItemID:        row.ItemID,
			Correct:       row.Correct,
			Question:      row.Question,
			UserAnswer:    row.UserAnswer,
			CorrectAnswer: row.CorrectAnswer,
			Date:          row.Date,
		})
	}

	var errorRows []errorLogRow
	if err := r.db.SelectContext(ctx, &errorRows, "SELECT * FROM error_log ORDER BY position"); err != nil {
		return Snapshot{}, fmt.Errorf("db.SelectContext(error_log) > %w", err)
	}
	for _, row := range errorRows {
		snap.ErrorLog = append(snap.ErrorLog, item.ErrorLogEntry{
			ID:                row.ID,
			Category:          item.Category(row.Category),
			ItemID:            row.ItemID,
			Question:          row.Question,
			UserAnswer:        row.UserAnswer,
			CorrectAnswer:     row.CorrectAnswer,
			Explanation:       row.Explanation,
			Source:            row.Source,
			Status:            row.Status,
			NeedsSRS:          row.NeedsSRS,
			PlannedReviewDate: row.PlannedReviewDate,
			Notes:             row.Notes,
			Date:              row.Date,
		})
	}

	return snap, nil
}

// Save replaces the persisted state with the snapshot in one transaction,
// matching the document-store save(state) contract.
func (r *SQLiteRepository) Save(ctx context.Context, snap Snapshot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"items", "review_events", "error_log"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("tx.ExecContext(delete %s) > %w", table, err)
		}
	}

	position := 0
	for _, category := range item.Categories() {
		for _, it := range snap.Items[category] {
			payload, err := json.Marshal(it)
			if err != nil {
				return fmt.Errorf("json.Marshal(item %s) > %w", it.Schedule().ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO items (id, category, payload, position) VALUES (?, ?, ?, ?)",
				it.Schedule().ID, string(category), string(payload), position); err != nil {
				return fmt.Errorf("tx.ExecContext(insert item) > %w", err)
			}
			position++
		}
	}

	for i, ev := range snap.ReviewEvents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO review_events (id, category, item_id, correct, question, user_answer, correct_answer, date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.ID, string(ev.Category), ev.ItemID, ev.Correct, ev.Question, ev.UserAnswer, ev.CorrectAnswer, ev.Date, i); err != nil {
			return fmt.Errorf("tx.ExecContext(insert review_event) > %w", err)
		}
	}

	for i, entry := range snap.ErrorLog {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO error_log (id, category, item_id, question, user_answer, correct_answer, explanation, source, status, needs_srs, planned_review_date, notes, date, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID, string(entry.Category), entry.ItemID, entry.Question, entry.UserAnswer, entry.CorrectAnswer,
			entry.Explanation, entry.Source, entry.Status, entry.NeedsSRS, entry.PlannedReviewDate, entry.Notes, entry.Date, i); err != nil {
			return fmt.Errorf("tx.ExecContext(insert error_log) > %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

// Clear empties all persisted collections in one transaction.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"items", "review_events", "error_log"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("tx.ExecContext(delete %s) > %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteRepository)(nil)
