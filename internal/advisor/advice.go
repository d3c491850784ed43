package advisor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

// AdviceSynthesizer writes natural-language advice from a question and its results.
type AdviceSynthesizer struct {
	backend Backend
	logger  *logrus.Logger
}

func NewAdviceSynthesizer(backend Backend, logger *logrus.Logger) *AdviceSynthesizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &AdviceSynthesizer{backend: backend, logger: logger}
}

// Prompt builds the three-part advice request. An empty result is still
// rendered as a table so the backend sees that nothing matched.
func (a *AdviceSynthesizer) Prompt(question string, results *store.ResultSet) Prompt {
	return Prompt{
		System:  adviceSystemPrompt,
		User:    fmt.Sprintf(adviceUserTemplate, FormatTable(results), question),
		Closing: adviceClosingPrompt,
	}
}

// Synthesize returns non-empty advice or a *GenerationError.
func (a *AdviceSynthesizer) Synthesize(ctx context.Context, question string, results *store.ResultSet) (string, error) {
	text, err := a.backend.Generate(ctx, a.Prompt(question, results))
	if err != nil {
		return "", &GenerationError{Stage: GenerationAdvice, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &GenerationError{Stage: GenerationAdvice, Err: ErrEmptyGeneration}
	}
	return text, nil
}

// FormatTable renders a result set as an aligned plain-text table followed by a
// row count line.
func FormatTable(rs *store.ResultSet) string {
	var b strings.Builder
	if rs == nil || len(rs.Columns) == 0 {
		b.WriteString("(no columns)\n(0 rows)\n")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(rs.Columns, "\t"))
	for i := range rs.Rows {
		vals := rs.Values(i)
		cells := make([]string, len(vals))
		for j, v := range vals {
			cells[j] = FormatValue(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	w.Flush()

	if rs.Len() == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", rs.Len())
	}
	return b.String()
}

// FormatValue renders a single cell.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(t)
	}
}
