package task

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FordLabs/retroquest-sub000/board"
	qport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
)

type stubServer struct {
	handlers map[string]qport.Handler
}

func (s *stubServer) Register(taskType string, h qport.Handler) {
	if s.handlers == nil {
		s.handlers = make(map[string]qport.Handler)
	}
	s.handlers[taskType] = h
}

func (s *stubServer) Run(context.Context) error  { return nil }
func (s *stubServer) Stop(context.Context) error { return nil }

func TestNewRetroSummaryPayload_PartitionsBoardState(t *testing.T) {
	team := board.Team{ID: 7, Name: "alpha", ContactEmails: []string{"lead@example.com"}}
	thoughts := []board.Thought{
		{Topic: board.TopicHappy, Message: "shipped", Discussed: true},
		{Topic: board.TopicUnhappy, Message: "flaky ci"},
	}
	items := []board.ActionItem{
		{Task: "fix ci", Assignee: "dana"},
		{Task: "write runbook", Completed: true},
	}

	p := NewRetroSummaryPayload(team, thoughts, items)

	assert.Equal(t, "alpha", p.TeamName)
	assert.Equal(t, []string{"lead@example.com"}, p.ContactEmails)
	assert.Equal(t, []string{"[happy] shipped"}, p.Discussed)
	assert.Equal(t, []string{"[unhappy] flaky ci"}, p.Open)
	assert.Equal(t, []string{"write runbook"}, p.CompletedWork)
	assert.Equal(t, []string{"fix ci (dana)"}, p.CarryOver)
}

func TestFormatSummary_SkipsEmptySections(t *testing.T) {
	p := &RetroSummaryPayload{
		Discussed: []string{"[happy] shipped"},
		CarryOver: []string{"fix ci (dana)"},
	}

	body := formatSummary(p)
	assert.Contains(t, body, "Discussed\n  - [happy] shipped")
	assert.Contains(t, body, "Carried over to next retro\n  - fix ci (dana)")
	assert.NotContains(t, body, "Not discussed")
	assert.NotContains(t, body, "Completed action items")
}

func TestFormatSummary_EmptyBoard(t *testing.T) {
	assert.Equal(t, "The board was empty.\n", formatSummary(&RetroSummaryPayload{}))
}

func TestRetroSummaryHandler_MalformedPayloadIsNotRetried(t *testing.T) {
	srv := &stubServer{}
	RegisterRetroSummaryTask(srv, nil)

	h, ok := srv.handlers[RetroSummaryTaskType]
	require.True(t, ok, "handler registered under the task type")

	err := h(context.Background(), qport.Task{Type: RetroSummaryTaskType, Payload: []byte("{broken")})
	assert.NoError(t, err, "a payload that cannot parse must not loop through retries")
}

func TestRetroSummaryHandler_UnconfiguredSenderIsNoop(t *testing.T) {
	srv := &stubServer{}
	RegisterRetroSummaryTask(srv, nil)

	err := srv.handlers[RetroSummaryTaskType](context.Background(), qport.Task{
		Type:    RetroSummaryTaskType,
		Payload: []byte(`{"teamName":"alpha","contactEmails":["lead@example.com"]}`),
	})
	assert.NoError(t, err)
}
