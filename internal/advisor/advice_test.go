package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

func TestFormatTable(t *testing.T) {
	rs := &store.ResultSet{
		Columns: []string{"name", "price", "note"},
		Rows: []store.Row{
			{"name": "Pedro Porro", "price": 5.5, "note": nil},
			{"name": "William Saliba", "price": 6.0, "note": "captain"},
		},
	}

	got := FormatTable(rs)
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "name"))
	assert.Contains(t, lines[0], "price")
	assert.Contains(t, lines[1], "Pedro Porro")
	assert.Contains(t, lines[1], "5.5")
	assert.Contains(t, lines[1], "NULL")
	assert.Contains(t, lines[2], "6")
	assert.Equal(t, "(2 rows)", lines[3])
}

func TestFormatTable_Empty(t *testing.T) {
	got := FormatTable(&store.ResultSet{Columns: []string{"name", "price"}, Rows: []store.Row{}})
	assert.Contains(t, got, "name")
	assert.Contains(t, got, "price")
	assert.Contains(t, got, "(0 rows)")

	assert.Contains(t, FormatTable(nil), "(0 rows)")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "NULL", FormatValue(nil))
	assert.Equal(t, "7.5", FormatValue(7.5))
	assert.Equal(t, "120", FormatValue(int64(120)))
	assert.Equal(t, "Arsenal", FormatValue("Arsenal"))
}

func TestAdviceSynthesizer_ForwardsEmptyResults(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("  No players matched that question.  "),
	}}
	as := NewAdviceSynthesizer(backend, quietLogger())

	empty := &store.ResultSet{Columns: []string{"name"}, Rows: []store.Row{}}
	advice, err := as.Synthesize(context.Background(), "Best keeper at Nowhere FC?", empty)
	require.NoError(t, err)
	assert.Equal(t, "No players matched that question.", advice)

	require.Equal(t, 1, backend.calls())
	p := backend.prompts[0]
	assert.Equal(t, adviceSystemPrompt, p.System)
	assert.Contains(t, p.User, "Question: Best keeper at Nowhere FC?")
	assert.Contains(t, p.User, "(0 rows)")
	assert.Equal(t, adviceClosingPrompt, p.Closing)
}

func TestAdviceSynthesizer_PromptWeighsFixtures(t *testing.T) {
	as := NewAdviceSynthesizer(&scriptedBackend{}, quietLogger())
	rs := &store.ResultSet{Columns: []string{"name"}, Rows: []store.Row{{"name": "Cole Palmer"}}}

	p := as.Prompt("Is Palmer worth it?", rs)
	for _, factor := range []string{"form", "value for money", "upcoming fixtures", "recent performance"} {
		assert.Contains(t, p.Closing, factor)
	}
	assert.Contains(t, p.User, "Cole Palmer")
	assert.Contains(t, p.User, "Question: Is Palmer worth it?")
}

func TestAdviceSynthesizer_Failures(t *testing.T) {
	rs := &store.ResultSet{Columns: []string{"name"}, Rows: []store.Row{{"name": "Cole Palmer"}}}

	as := NewAdviceSynthesizer(&scriptedBackend{replies: []func(Prompt) (string, error){
		replyErr(errors.New("timeout")),
	}}, quietLogger())
	_, err := as.Synthesize(context.Background(), "q", rs)
	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, GenerationAdvice, ge.Stage)

	as = NewAdviceSynthesizer(&scriptedBackend{replies: []func(Prompt) (string, error){reply(" \n ")}}, quietLogger())
	_, err = as.Synthesize(context.Background(), "q", rs)
	assert.ErrorIs(t, err, ErrEmptyGeneration)
}
