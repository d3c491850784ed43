package advisor

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// fenceRe matches a markdown code fence with an optional language tag.
var fenceRe = regexp.MustCompile("(?i)```[ \t]*(?:sqlite|clickhouse|sql)?")

// CleanQuery strips markdown fences, a bare "sql" tag line, surrounding
// whitespace and trailing semicolons. CleanQuery(CleanQuery(s)) == CleanQuery(s).
func CleanQuery(s string) string {
	for {
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

// cleanOnce only ever removes text, so CleanQuery terminates.
func cleanOnce(s string) string {
	s = strings.TrimSpace(s)

	switch locs := fenceRe.FindAllStringIndex(s, 2); len(locs) {
	case 2:
		// keep the body of the first fenced block, drop any prose around it
		s = s[locs[0][1]:locs[1][0]]
	case 1:
		s = s[:locs[0][0]] + s[locs[0][1]:]
	}
	s = strings.TrimSpace(s)

	if first, rest, found := strings.Cut(s, "\n"); strings.EqualFold(strings.TrimSpace(first), "sql") {
		if found {
			s = rest
		} else {
			s = ""
		}
	}

	s = strings.TrimRight(s, "; \t\r\n")
	return strings.TrimSpace(s)
}

// QuerySynthesizer turns a question into a single SQL query for the players table.
type QuerySynthesizer struct {
	backend Backend
	dialect string
	logger  *logrus.Logger
}

func NewQuerySynthesizer(backend Backend, dialect string, logger *logrus.Logger) *QuerySynthesizer {
	if dialect == "" {
		dialect = "SQLite"
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &QuerySynthesizer{backend: backend, dialect: dialect, logger: logger}
}

// Prompt builds the request sent to the backend for question.
func (q *QuerySynthesizer) Prompt(question string, schema *store.Schema) Prompt {
	return Prompt{
		System: fmt.Sprintf(querySystemPrompt, q.dialect, schema.Prompt()),
		User:   question,
	}
}

// Synthesize returns a cleaned, non-empty query or a *GenerationError.
// The query is not validated against the schema here.
func (q *QuerySynthesizer) Synthesize(ctx context.Context, question string, schema *store.Schema) (string, error) {
	raw, err := q.backend.Generate(ctx, q.Prompt(question, schema))
	if err != nil {
		return "", &GenerationError{Stage: GenerationQuery, Err: err}
	}

	query := CleanQuery(raw)
	if query == "" {
		return "", &GenerationError{Stage: GenerationQuery, Err: ErrEmptyGeneration}
	}

	q.logger.WithField("sql", query).Debug("Generated SQL")
	return query, nil
}
