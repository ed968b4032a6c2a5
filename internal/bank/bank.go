// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bank stores parsed question files in a local SQLite database.
// Each imported file becomes a category; answers left open by the parser can
// be filled in afterwards and categories exported back to the parsed-file
// format.
package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/quizpdf/pkg/types"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "bank/quizpdf.db"

var (
	// ErrNotFound is returned when a category or question does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidAnswer is returned when an answer does not name one of the
	// question's options.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrInvalidStatus is returned for an unknown category status.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidCategory is returned for an empty or malformed category id.
	ErrInvalidCategory = errors.New("invalid category")
)

// Status is the publication state of a category.
type Status string

const (
	StatusActive   Status = "actief"
	StatusInactive Status = "non-actief"
	StatusUpcoming Status = "binnenkort"
)

// ParseStatus validates s as a category status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusInactive, StatusUpcoming:
		return st, nil
	default:
		return "", fmt.Errorf("%w %q (want actief, non-actief or binnenkort)", ErrInvalidStatus, s)
	}
}

// Store manages the question bank database.
type Store struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens or creates the bank at path, creating parent directories and
// the schema as needed.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating bank directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		path:    path,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'actief',
			series_name TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			key TEXT PRIMARY KEY,
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			number INTEGER NOT NULL,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			options_text TEXT NOT NULL DEFAULT '',
			correct_answer TEXT,
			needs_image INTEGER NOT NULL DEFAULT 0,
			image_description TEXT NOT NULL DEFAULT '',
			option_images TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category ON questions(category_id, position)`,
		`CREATE TABLE IF NOT EXISTS question_sets (
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			question_ids TEXT NOT NULL,
			PRIMARY KEY (category_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			source TEXT NOT NULL,
			file_mod_time TEXT NOT NULL,
			questions INTEGER NOT NULL,
			dropped INTEGER NOT NULL,
			questions_per_set INTEGER NOT NULL DEFAULT 0,
			pages INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_imports_category ON imports(category_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// Columns added after the first release; banks created earlier lack them.
	columns := []struct{ table, column, decl string }{
		{"questions", "options_text", `TEXT NOT NULL DEFAULT ''`},
		{"imports", "questions_per_set", `INTEGER NOT NULL DEFAULT 0`},
		{"imports", "pages", `INTEGER NOT NULL DEFAULT 0`},
	}
	for _, c := range columns {
		if err := s.addColumn(c.table, c.column, c.decl); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) addColumn(table, column, decl string) error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return fmt.Errorf("reading columns of %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning column of %s: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if _, err := s.db.Exec(`ALTER TABLE ` + table + ` ADD COLUMN ` + column + ` ` + decl); err != nil {
		return fmt.Errorf("adding %s.%s: %w", table, column, err)
	}
	return nil
}

func (s *Store) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// QuestionKey is the bank key of question id within category.
func QuestionKey(category string, id int) string {
	return fmt.Sprintf("%s-%d", category, id)
}

// CheckCategory validates a category id: lowercase letters, digits, '-' and
// '_', starting and ending with a letter or digit. The trailing rule keeps
// question keys of different categories from colliding.
func CheckCategory(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidCategory)
	}
	last := len(id) - 1
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case (r == '-' || r == '_') && i > 0 && i < last:
		default:
			return fmt.Errorf("%w %q: use lowercase letters and digits, with '-' and '_' only between them", ErrInvalidCategory, id)
		}
	}
	return nil
}

// ImportOptions describes one import into the bank.
type ImportOptions struct {
	// Category is the id of the category to create or replace.
	Category string

	// Name and Description label the category. An empty Name falls back to
	// the file's series name, then to the category id.
	Name        string
	Description string

	// Source is the parsed file the questions came from.
	Source string

	// ModTime is the source's modification time. An import whose source
	// and ModTime match the latest import of the category is skipped.
	ModTime time.Time

	// Force imports even when the source is unchanged.
	Force bool
}

// ImportResult summarizes an import.
type ImportResult struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Category  string `json:"category" yaml:"category"`
	Questions int    `json:"questions" yaml:"questions"`
	Sets      int    `json:"sets" yaml:"sets"`
	Dropped   int    `json:"droppedBlocks" yaml:"droppedBlocks"`
	Updated   bool   `json:"updated" yaml:"updated"`
	Skipped   bool   `json:"skipped" yaml:"skipped"`
}

// Import replaces the questions and sets of a category with those of pf in
// a single transaction. The category keeps its status across re-imports.
func (s *Store) Import(ctx context.Context, opts ImportOptions, pf types.ParsedFile) (ImportResult, error) {
	if err := CheckCategory(opts.Category); err != nil {
		return ImportResult{}, err
	}
	if err := pf.Validate(); err != nil {
		return ImportResult{}, fmt.Errorf("importing %s: %w", opts.Source, err)
	}

	res := ImportResult{
		Category:  opts.Category,
		Questions: len(pf.Questions),
		Sets:      len(pf.QuestionSets),
		Dropped:   pf.Metadata.DroppedBlocks,
	}
	modTime := ""
	if !opts.ModTime.IsZero() {
		modTime = opts.ModTime.UTC().Format(time.RFC3339Nano)
	}

	var lastSource, lastModTime string
	err := s.db.QueryRowContext(ctx,
		`SELECT source, file_mod_time FROM imports WHERE category_id = ? ORDER BY id DESC LIMIT 1`,
		opts.Category,
	).Scan(&lastSource, &lastModTime)
	switch {
	case err == nil:
		res.Updated = true
		if !opts.Force && modTime != "" && lastSource == opts.Source && lastModTime == modTime {
			res.Skipped = true
			return res, nil
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return ImportResult{}, fmt.Errorf("checking previous import: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = pf.Metadata.SeriesName
	}
	if name == "" {
		name = opts.Category
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, status, series_name, source)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, description=excluded.description,
			series_name=excluded.series_name, source=excluded.source`,
		opts.Category, name, opts.Description, string(StatusActive),
		pf.Metadata.SeriesName, opts.Source,
	)
	if err != nil {
		return ImportResult{}, fmt.Errorf("upserting category: %w", err)
	}

	for _, table := range []string{"questions", "question_sets"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE category_id = ?`, opts.Category); err != nil {
			return ImportResult{}, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertQuestions(ctx, tx, opts.Category, pf.Questions); err != nil {
		return ImportResult{}, err
	}
	if err := insertSets(ctx, tx, opts.Category, pf.QuestionSets); err != nil {
		return ImportResult{}, err
	}

	res.ID = s.newID()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, category_id, source, file_mod_time, questions, dropped,
			questions_per_set, pages)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, opts.Category, opts.Source, modTime, res.Questions, res.Dropped,
		pf.Metadata.QuestionsPerSet, pf.Metadata.Pages,
	)
	if err != nil {
		return ImportResult{}, fmt.Errorf("recording import: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}

func insertQuestions(ctx context.Context, tx *sql.Tx, category string, questions []types.Question) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (key, category_id, position, number, text, options,
			options_text, correct_answer, needs_image, image_description, option_images)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing question insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range questions {
		if err := ctx.Err(); err != nil {
			return err
		}
		optionsJSON, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("encoding options of question %d: %w", q.ID, err)
		}
		var optionImages sql.NullString
		if len(q.OptionImages) > 0 {
			data, err := json.Marshal(q.OptionImages)
			if err != nil {
				return fmt.Errorf("encoding option images of question %d: %w", q.ID, err)
			}
			optionImages = sql.NullString{String: string(data), Valid: true}
		}
		_, err = stmt.ExecContext(ctx,
			QuestionKey(category, q.ID), category, i, q.ID, q.Text, string(optionsJSON),
			optionsText(q.Options), nullAnswer(q.CorrectAnswer), q.NeedsImage, q.ImageDescription, optionImages,
		)
		if err != nil {
			return fmt.Errorf("inserting question %d: %w", q.ID, err)
		}
	}
	return nil
}

func insertSets(ctx context.Context, tx *sql.Tx, category string, sets types.QuestionSets) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO question_sets (category_id, position, name, question_ids) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing set insert: %w", err)
	}
	defer stmt.Close()

	for i, set := range sets {
		ids := set.QuestionIDs
		if ids == nil {
			ids = []int{}
		}
		idsJSON, _ := json.Marshal(ids)
		if _, err := stmt.ExecContext(ctx, category, i, set.Name, string(idsJSON)); err != nil {
			return fmt.Errorf("inserting set %s: %w", set.Name, err)
		}
	}
	return nil
}

// optionsText joins the option texts one per line for text search.
func optionsText(opts types.Options) string {
	texts := make([]string, len(opts))
	for i, opt := range opts {
		texts[i] = opt.Text
	}
	return strings.Join(texts, "\n")
}

func nullAnswer(a types.Answer) sql.NullString {
	return sql.NullString{String: string(a), Valid: a != ""}
}
