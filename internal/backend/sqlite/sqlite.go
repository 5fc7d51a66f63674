// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlite provides a SQLite question store for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	_ "modernc.org/sqlite"

	"github.com/tombee/polls/internal/polls"
	"github.com/tombee/polls/internal/tracing"
)

// Compile-time interface assertions.
var (
	_ polls.Store  = (*Backend)(nil)
	_ polls.Lister = (*Backend)(nil)
	_ polls.Pinger = (*Backend)(nil)
)

// timeLayout is fixed-width and always UTC so that text comparison in SQL
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Backend is a SQLite storage backend.
type Backend struct {
	db *sql.DB
}

// Config contains SQLite connection configuration.
type Config struct {
	// Path is the database file path. ":memory:" opens a private in-memory
	// database.
	Path string

	// WAL enables Write-Ahead Logging mode for concurrent reads.
	WAL bool
}

// New opens the database, applies pragmas and runs migrations.
func New(cfg Config) (*Backend, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes, and ":memory:" is per-connection.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	b := &Backend{db: db}

	if err := b.configurePragmas(ctx, cfg.WAL && cfg.Path != ":memory:"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure pragmas: %w", err)
	}

	if err := b.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return b, nil
}

// configurePragmas sets SQLite configuration options.
func (b *Backend) configurePragmas(ctx context.Context, enableWAL bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	if enableWAL {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}

	for _, pragma := range pragmas {
		if _, err := b.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// migrate runs database migrations.
func (b *Backend) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS polls_question (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_text TEXT NOT NULL,
			pub_date TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_polls_question_pub_date ON polls_question(pub_date DESC)`,
	}

	for _, migration := range migrations {
		if _, err := b.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateQuestion inserts q and assigns its ID.
func (b *Backend) CreateQuestion(ctx context.Context, q *polls.Question) error {
	if err := polls.Validate(q); err != nil {
		return err
	}

	ctx, span := tracing.StartSpan(ctx, "sqlite.CreateQuestion")
	defer span.End()

	res, err := b.db.ExecContext(ctx,
		`INSERT INTO polls_question (question_text, pub_date) VALUES (?, ?)`,
		q.QuestionText, formatTime(q.PubDate),
	)
	if err != nil {
		tracing.RecordError(span, err)
		return fmt.Errorf("failed to create question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read question id: %w", err)
	}
	q.ID = id
	span.SetAttributes(attribute.Int64("question.id", id))
	return nil
}

// ListPublished returns questions published on or before at, newest first.
func (b *Backend) ListPublished(ctx context.Context, at time.Time) ([]*polls.Question, error) {
	ctx, span := tracing.StartSpan(ctx, "sqlite.ListPublished")
	defer span.End()

	qs, err := b.query(ctx, `
		SELECT id, question_text, pub_date FROM polls_question
		WHERE pub_date <= ?
		ORDER BY pub_date DESC, id DESC
	`, formatTime(at))
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("question.count", len(qs)))
	return qs, nil
}

// GetPublished retrieves a question by ID if it is published at at.
func (b *Backend) GetPublished(ctx context.Context, id int64, at time.Time) (*polls.Question, error) {
	ctx, span := tracing.StartSpan(ctx, "sqlite.GetPublished", attribute.Int64("question.id", id))
	defer span.End()

	var q polls.Question
	var pubDate string
	err := b.db.QueryRowContext(ctx,
		`SELECT id, question_text, pub_date FROM polls_question WHERE id = ? AND pub_date <= ?`,
		id, formatTime(at),
	).Scan(&q.ID, &q.QuestionText, &pubDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, polls.NotFound(id)
	}
	if err != nil {
		tracing.RecordError(span, err)
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if q.PubDate, err = parseTime(pubDate); err != nil {
		return nil, err
	}
	return &q, nil
}

// ListAll returns every question, newest first.
func (b *Backend) ListAll(ctx context.Context) ([]*polls.Question, error) {
	return b.query(ctx, `
		SELECT id, question_text, pub_date FROM polls_question
		ORDER BY pub_date DESC, id DESC
	`)
}

// Ping checks the database connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) query(ctx context.Context, query string, args ...any) ([]*polls.Question, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var qs []*polls.Question
	for rows.Next() {
		var q polls.Question
		var pubDate string
		if err := rows.Scan(&q.ID, &q.QuestionText, &pubDate); err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		if q.PubDate, err = parseTime(pubDate); err != nil {
			return nil, err
		}
		qs = append(qs, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}
	return qs, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse pub_date %q: %w", s, err)
	}
	return t, nil
}
