package task

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/internal/infrastructure/email"
	qport "github.com/FordLabs/retroquest-sub000/internal/infrastructure/queue/port"
)

// RetroSummaryTaskType is the queue task name for mailing a retro summary.
const RetroSummaryTaskType = "retro:summary"

// RetroSummaryPayload is the JSON payload transported via the queue. It is a
// snapshot taken before end-retro wipes the board, decoupled from domain
// persistence so the worker needs no database access.
type RetroSummaryPayload struct {
	TeamName      string   `json:"teamName"`
	ContactEmails []string `json:"contactEmails"`
	Discussed     []string `json:"discussed"`
	Open          []string `json:"open"`
	CompletedWork []string `json:"completedWork"`
	CarryOver     []string `json:"carryOver"`
}

// NewRetroSummaryPayload partitions the pre-wipe board state into the summary
// sections of the mail.
func NewRetroSummaryPayload(team board.Team, thoughts []board.Thought, items []board.ActionItem) *RetroSummaryPayload {
	p := &RetroSummaryPayload{
		TeamName:      team.Name,
		ContactEmails: team.ContactEmails,
	}
	for _, t := range thoughts {
		line := fmt.Sprintf("[%s] %s", t.Topic, t.Message)
		if t.Discussed {
			p.Discussed = append(p.Discussed, line)
		} else {
			p.Open = append(p.Open, line)
		}
	}
	for _, a := range items {
		line := a.Task
		if a.Assignee != "" {
			line += " (" + a.Assignee + ")"
		}
		if a.Completed {
			p.CompletedWork = append(p.CompletedWork, line)
		} else {
			p.CarryOver = append(p.CarryOver, line)
		}
	}
	return p
}

// RegisterRetroSummaryTask binds the summary mail handler to the worker
// server. Unconfigured mail makes the handler a no-op rather than a retry
// loop.
func RegisterRetroSummaryTask(srv qport.Server, sender *email.Sender) {
	srv.Register(RetroSummaryTaskType, func(ctx context.Context, t qport.Task) error {
		var p RetroSummaryPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not fix it
			return nil
		}
		if sender == nil || !sender.Configured() || len(p.ContactEmails) == 0 {
			return nil
		}
		subject := fmt.Sprintf("Retro summary for %s", p.TeamName)
		return sender.Send(p.ContactEmails, subject, formatSummary(&p))
	})
}

func formatSummary(p *RetroSummaryPayload) string {
	var b strings.Builder
	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		b.WriteString(title + "\n")
		for _, line := range lines {
			b.WriteString("  - " + line + "\n")
		}
		b.WriteString("\n")
	}
	section("Discussed", p.Discussed)
	section("Not discussed", p.Open)
	section("Completed action items", p.CompletedWork)
	section("Carried over to next retro", p.CarryOver)
	if b.Len() == 0 {
		return "The board was empty.\n"
	}
	return b.String()
}
