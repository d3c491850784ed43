package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/fpl-advisor/internal/metrics"
	"github.com/aman-zulfiqar/fpl-advisor/internal/store"
)

const defendersQuery = "```sql\n" +
	"SELECT name, team, price, total_points, ROUND(total_points / price, 2) AS points_per_million\n" +
	"FROM players WHERE position = 'Defender'\n" +
	"ORDER BY total_points / price DESC LIMIT 5;\n" +
	"```"

// adviceNamingFirstPlayer answers with the first player name found in the data table.
func adviceNamingFirstPlayer(names ...string) func(Prompt) (string, error) {
	return func(p Prompt) (string, error) {
		for _, n := range names {
			if strings.Contains(p.User, n) {
				return n + " offers the best points per million among defenders.", nil
			}
		}
		return "No players matched.", nil
	}
}

func assertQuestions(t *testing.T, m *metrics.Manager, outcome string) {
	t.Helper()
	expected := `
# HELP fpl_advisor_questions_total Questions handled, by outcome
# TYPE fpl_advisor_questions_total counter
fpl_advisor_questions_total{outcome="` + outcome + `"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "fpl_advisor_questions_total"))
}

func newTestOrchestrator(t *testing.T, backend Backend, st SchemaQuerier, m *metrics.Manager) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(context.Background(), Config{
		Backend: backend,
		Store:   st,
		Dialect: "SQLite",
		Metrics: m,
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	return o
}

func TestOrchestrator_BestValueDefenders(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply(defendersQuery),
		adviceNamingFirstPlayer("Pedro Porro", "William Saliba"),
	}}
	m := metrics.NewManager()
	o := newTestOrchestrator(t, backend, populatedStore(t), m)

	var history History
	out := o.Handle(context.Background(), &history, "Who are the best value defenders?")

	require.NoError(t, out.Err)
	assert.True(t, out.Delivered())
	assert.Equal(t, StageDelivered, out.Reached)
	assert.NotEmpty(t, out.ID)
	assert.NotContains(t, out.Query, "```")
	assert.False(t, strings.HasSuffix(out.Query, ";"))

	require.Equal(t, 2, out.Results.Len())
	assert.Equal(t, []string{"name", "team", "price", "total_points", "points_per_million"}, out.Results.Columns)
	assert.Equal(t, "Pedro Porro", out.Results.Rows[0]["name"])
	assert.Equal(t, "William Saliba", out.Results.Rows[1]["name"])
	assert.Contains(t, out.Advice, "Pedro Porro")
	assert.Equal(t, out.Advice, out.Message())

	// the advice prompt carries the executed table and the original question
	require.Equal(t, 2, backend.calls())
	assert.Contains(t, backend.prompts[1].User, "Pedro Porro")
	assert.Contains(t, backend.prompts[1].User, "Who are the best value defenders?")

	msgs := history.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Role: RoleUser, Content: "Who are the best value defenders?"}, msgs[0])
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, out.Advice, msgs[1].Content)

	assertQuestions(t, m, metrics.OutcomeDelivered)
}

func TestOrchestrator_EmptyResultStillAdvised(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("SELECT name FROM players WHERE team = 'Nowhere FC'"),
		reply("No players from that club are in the data."),
	}}
	o := newTestOrchestrator(t, backend, populatedStore(t), nil)

	out := o.Handle(context.Background(), nil, "Best keeper at Nowhere FC?")
	require.NoError(t, out.Err)
	assert.True(t, out.Delivered())
	assert.True(t, out.Results.Empty())
	assert.Equal(t, "No players from that club are in the data.", out.Advice)
	assert.Contains(t, backend.prompts[1].User, "(0 rows)")
}

func TestOrchestrator_QuerySynthesisFailure(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		replyErr(errors.New("upstream unavailable")),
	}}
	o := newTestOrchestrator(t, backend, populatedStore(t), nil)

	var history History
	out := o.Handle(context.Background(), &history, "Who should I captain?")

	assert.Equal(t, StageErrored, out.Stage)
	assert.Equal(t, StageReceived, out.Reached)
	var ge *GenerationError
	require.ErrorAs(t, out.Err, &ge)
	assert.Equal(t, GenerationQuery, ge.Stage)
	assert.Nil(t, out.Results)
	assert.Empty(t, out.Advice)
	assert.Equal(t, 1, backend.calls(), "advice must not be requested")

	msgs := history.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "An error occurred: "))
}

func TestOrchestrator_QueryExecutionFailure(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("SELECT goals_per_90 FROM players"),
	}}
	m := metrics.NewManager()
	o := newTestOrchestrator(t, backend, populatedStore(t), m)

	out := o.Handle(context.Background(), nil, "Goals per 90?")

	assert.Equal(t, StageErrored, out.Stage)
	assert.Equal(t, StageQuerySynthesized, out.Reached)
	var qe *store.QueryError
	require.ErrorAs(t, out.Err, &qe)
	assert.Equal(t, "SELECT goals_per_90 FROM players", qe.Query)
	assert.Nil(t, out.Results)
	assert.Empty(t, out.Advice)
	assert.Equal(t, 1, backend.calls())
	assertQuestions(t, m, metrics.OutcomeErrored)
}

func TestOrchestrator_MutationNeverReachesStore(t *testing.T) {
	st := populatedStore(t)
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("DELETE FROM players"),
	}}
	o := newTestOrchestrator(t, backend, st, nil)

	out := o.Handle(context.Background(), nil, "Remove everyone")
	assert.ErrorIs(t, out.Err, store.ErrNotReadOnly)

	n, err := st.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestOrchestrator_AdviceFailureDropsResults(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("SELECT name FROM players"),
		replyErr(errors.New("context length exceeded")),
	}}
	o := newTestOrchestrator(t, backend, populatedStore(t), nil)

	out := o.Handle(context.Background(), nil, "Everyone?")
	assert.Equal(t, StageErrored, out.Stage)
	assert.Equal(t, StageExecuted, out.Reached)
	var ge *GenerationError
	require.ErrorAs(t, out.Err, &ge)
	assert.Equal(t, GenerationAdvice, ge.Stage)
	assert.Nil(t, out.Results, "errored outcomes never carry results")
	assert.Empty(t, out.Advice)
	assert.Equal(t, "An error occurred: advice generation failed: context length exceeded", out.Message())
}

func TestOrchestrator_EmptyQuestion(t *testing.T) {
	backend := &scriptedBackend{}
	o := newTestOrchestrator(t, backend, populatedStore(t), nil)

	var history History
	out := o.Handle(context.Background(), &history, "   ")
	assert.ErrorIs(t, out.Err, ErrEmptyQuestion)
	assert.Zero(t, backend.calls())
	assert.Zero(t, history.Len())
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := NewOrchestrator(context.Background(), Config{Store: populatedStore(t)})
	assert.Error(t, err)

	_, err = NewOrchestrator(context.Background(), Config{Backend: &scriptedBackend{}})
	assert.Error(t, err)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "received", StageReceived.String())
	assert.Equal(t, "delivered", StageDelivered.String())
	assert.Equal(t, "errored", StageErrored.String())
	assert.Equal(t, "stage(42)", Stage(42).String())
}

func TestSession_Ask(t *testing.T) {
	backend := &scriptedBackend{replies: []func(Prompt) (string, error){
		reply("SELECT name FROM players WHERE position = 'Forward'"),
		adviceNamingFirstPlayer("Ollie Watkins"),
		replyErr(errors.New("quota")),
	}}
	s := NewSession(newTestOrchestrator(t, backend, populatedStore(t), nil))
	assert.NotEmpty(t, s.ID)

	first := s.Ask(context.Background(), "Forwards?")
	require.NoError(t, first.Err)
	second := s.Ask(context.Background(), "And midfielders?")
	require.Error(t, second.Err)

	h := s.History()
	require.Len(t, h, 4)
	assert.Equal(t, "Forwards?", h[0].Content)
	assert.Contains(t, h[1].Content, "Ollie Watkins")
	assert.Equal(t, "And midfielders?", h[2].Content)
	assert.Equal(t, second.Message(), h[3].Content)
}
