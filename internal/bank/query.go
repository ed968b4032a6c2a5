// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/quizpdf/pkg/types"
)

// defaultSearchLimit caps search results when SearchOptions.Limit is zero.
const defaultSearchLimit = 50

// Category is a stored category with question counts.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status `json:"status" yaml:"status"`
	SeriesName  string `json:"seriesName,omitempty" yaml:"seriesName,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
	Questions   int    `json:"questions" yaml:"questions"`
	Unanswered  int    `json:"unanswered" yaml:"unanswered"`
}

// Categories lists all categories ordered by id.
func (s *Store) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.description, c.status, c.series_name, c.source,
			COUNT(q.key),
			COALESCE(SUM(CASE WHEN q.key IS NOT NULL AND q.correct_answer IS NULL THEN 1 ELSE 0 END), 0)
		FROM categories c
		LEFT JOIN questions q ON q.category_id = c.id
		GROUP BY c.id
		ORDER BY c.id`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var (
			c      Category
			status string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &status, &c.SeriesName, &c.Source,
			&c.Questions, &c.Unanswered); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		c.Status = Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SearchOptions filters a question search.
type SearchOptions struct {
	// Text matches a substring of the stem or of an option's text,
	// case-insensitively for ASCII letters. Option labels are not searched.
	Text string

	// Category restricts results to one category.
	Category string

	// Unanswered keeps only questions without a correct answer.
	Unanswered bool

	// Limit caps the number of results. Zero uses the default; a negative
	// limit returns every match.
	Limit int
}

// SearchResult is a stored question with its category.
type SearchResult struct {
	Key      string `json:"key" yaml:"key"`
	Category string `json:"category" yaml:"category"`
	types.Question `yaml:",inline"`
}

// Search returns the questions matching opts, ordered by category and
// source position.
func (s *Store) Search(ctx context.Context, opts SearchOptions) ([]SearchResult, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT key, category_id, number, text, options, correct_answer,
			needs_image, image_description, option_images
		FROM questions WHERE 1=1`)

	if opts.Text != "" {
		pattern := "%" + escapeLike(opts.Text) + "%"
		qb.WriteString(` AND (text LIKE ? ESCAPE '\' OR options_text LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if opts.Category != "" {
		qb.WriteString(` AND category_id = ?`)
		args = append(args, opts.Category)
	}
	if opts.Unanswered {
		qb.WriteString(` AND correct_answer IS NULL`)
	}
	qb.WriteString(` ORDER BY category_id, position LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching questions: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := scanQuestion(rows, &r.Key, &r.Category, &r.Question); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// SetAnswer records label as the correct answer of question id in
// category. An empty label clears the answer.
func (s *Store) SetAnswer(ctx context.Context, category string, id int, label string) error {
	label = strings.ToUpper(strings.TrimSpace(label))
	key := QuestionKey(category, id)

	var optionsJSON string
	err := s.db.QueryRowContext(ctx, `SELECT options FROM questions WHERE key = ?`, key).Scan(&optionsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("question %d in category %s: %w", id, category, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("loading question %s: %w", key, err)
	}

	if label != "" {
		var opts types.Options
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return fmt.Errorf("decoding options of %s: %w", key, err)
		}
		if !types.IsLabel(label) || !opts.Has(label) {
			return fmt.Errorf("%w %q for question %d: options are %s",
				ErrInvalidAnswer, label, id, strings.Join(opts.Labels(), ", "))
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE questions SET correct_answer = ? WHERE key = ?`,
		nullAnswer(types.Answer(label)), key,
	); err != nil {
		return fmt.Errorf("updating answer of %s: %w", key, err)
	}
	return nil
}

// SetStatus changes the status of a category.
func (s *Store) SetStatus(ctx context.Context, category string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET status = ? WHERE id = ?`, string(status), category)
	if err != nil {
		return fmt.Errorf("updating status of %s: %w", category, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", category, ErrNotFound)
	}
	return nil
}

// Export rebuilds the parsed file of a category, including answers filled
// in since the import.
func (s *Store) Export(ctx context.Context, category string) (types.ParsedFile, error) {
	var seriesName, source string
	err := s.db.QueryRowContext(ctx,
		`SELECT series_name, source FROM categories WHERE id = ?`, category,
	).Scan(&seriesName, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ParsedFile{}, fmt.Errorf("category %s: %w", category, ErrNotFound)
	}
	if err != nil {
		return types.ParsedFile{}, fmt.Errorf("loading category %s: %w", category, err)
	}

	pf := types.ParsedFile{Questions: []types.Question{}}

	results, err := s.Search(ctx, SearchOptions{Category: category, Limit: -1})
	if err != nil {
		return types.ParsedFile{}, err
	}
	for _, r := range results {
		pf.Questions = append(pf.Questions, r.Question)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, question_ids FROM question_sets WHERE category_id = ? ORDER BY position`, category)
	if err != nil {
		return types.ParsedFile{}, fmt.Errorf("loading sets of %s: %w", category, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			set     types.QuestionSet
			idsJSON string
		)
		if err := rows.Scan(&set.Name, &idsJSON); err != nil {
			return types.ParsedFile{}, fmt.Errorf("scanning set: %w", err)
		}
		if err := json.Unmarshal([]byte(idsJSON), &set.QuestionIDs); err != nil {
			return types.ParsedFile{}, fmt.Errorf("decoding set %s: %w", set.Name, err)
		}
		pf.QuestionSets = append(pf.QuestionSets, set)
	}
	if err := rows.Err(); err != nil {
		return types.ParsedFile{}, err
	}

	var dropped, perSet, pages int
	err = s.db.QueryRowContext(ctx,
		`SELECT dropped, questions_per_set, pages FROM imports
		 WHERE category_id = ? ORDER BY id DESC LIMIT 1`, category,
	).Scan(&dropped, &perSet, &pages)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return types.ParsedFile{}, fmt.Errorf("loading import of %s: %w", category, err)
	}

	pf.Metadata = types.Metadata{
		TotalQuestions:  len(pf.Questions),
		QuestionsPerSet: perSet,
		NumberOfSets:    len(pf.QuestionSets),
		DroppedBlocks:   dropped,
		SeriesName:      seriesName,
		Source:          source,
		Pages:           pages,
	}
	if perSet == 0 && len(pf.QuestionSets) > 0 {
		pf.Metadata.QuestionsPerSet = len(pf.QuestionSets[0].QuestionIDs)
	}
	return pf, pf.Validate()
}

func scanQuestion(rows *sql.Rows, key, category *string, q *types.Question) error {
	var (
		optionsJSON  string
		answer       sql.NullString
		optionImages sql.NullString
	)
	if err := rows.Scan(key, category, &q.ID, &q.Text, &optionsJSON, &answer,
		&q.NeedsImage, &q.ImageDescription, &optionImages); err != nil {
		return fmt.Errorf("scanning question: %w", err)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
		return fmt.Errorf("decoding options of %s: %w", *key, err)
	}
	if answer.Valid {
		q.CorrectAnswer = types.Answer(answer.String)
	}
	if optionImages.Valid {
		if err := json.Unmarshal([]byte(optionImages.String), &q.OptionImages); err != nil {
			return fmt.Errorf("decoding option images of %s: %w", *key, err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
