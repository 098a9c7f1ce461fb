package board

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Field limits enforced on user-submitted content, counted in runes so
// multibyte text is not penalized. The server is authoritative; the client
// engine applies the same checks before issuing a command.
const (
	MaxMessageLen = 255
	MaxTaskLen    = 255
	MaxTitleLen   = 16
)

var (
	ErrEmptyMessage   = errors.New("board: message must not be empty")
	ErrMessageTooLong = errors.New("board: message exceeds 255 characters")
	ErrEmptyTask      = errors.New("board: task must not be empty")
	ErrTaskTooLong    = errors.New("board: task exceeds 255 characters")
	ErrEmptyTitle     = errors.New("board: column title must not be empty")
	ErrTitleTooLong   = errors.New("board: column title exceeds 16 characters")
	ErrInvalidTopic   = errors.New("board: topic is not a valid thought topic")
)

// Team is the board owner. One active team per client session; replaced
// wholesale on a team-update event.
type Team struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	ContactEmails []string `json:"contact_emails,omitempty"`
}

// Column is a fixed category lane on the board. Columns are created
// server-side; clients may only rename them.
type Column struct {
	ID     int64  `json:"id"`
	TeamID int64  `json:"team_id,omitempty"`
	Topic  Topic  `json:"topic"`
	Title  string `json:"title"`
}

// ActionColumn returns the virtual column that action items render under.
// It is never persisted and never travels on the column channel; the negative
// id keeps it out of any server-assigned id range.
func ActionColumn() Column {
	return Column{ID: -1, Topic: TopicAction, Title: "Action Items"}
}

// Thought is a single retro card.
type Thought struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id,omitempty"`
	Topic     Topic  `json:"topic"`
	Message   string `json:"message"`
	Hearts    int    `json:"hearts"`
	Discussed bool   `json:"discussed"`
}

// ActionItem is a follow-up task. Completed items are wiped by end-retro;
// active ones carry over into the next retro.
type ActionItem struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id,omitempty"`
	Task      string `json:"task"`
	Assignee  string `json:"assignee,omitempty"`
	Completed bool   `json:"completed"`
}

// NewThought validates and normalizes a user-submitted thought. The id stays
// zero: ids are assigned by the server, never speculated locally.
func NewThought(teamID int64, topic Topic, message string) (Thought, error) {
	if !ValidThoughtTopic(topic) {
		return Thought{}, ErrInvalidTopic
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Thought{}, ErrEmptyMessage
	}
	if utf8.RuneCountInString(message) > MaxMessageLen {
		return Thought{}, ErrMessageTooLong
	}
	return Thought{TeamID: teamID, Topic: topic, Message: message}, nil
}

// NewActionItem validates and normalizes a user-submitted action item.
func NewActionItem(teamID int64, task string, assignee string) (ActionItem, error) {
	task = strings.TrimSpace(task)
	if task == "" {
		return ActionItem{}, ErrEmptyTask
	}
	if utf8.RuneCountInString(task) > MaxTaskLen {
		return ActionItem{}, ErrTaskTooLong
	}
	return ActionItem{TeamID: teamID, Task: task, Assignee: strings.TrimSpace(assignee)}, nil
}

// ValidateColumnTitle checks a rename request against the title limits.
func ValidateColumnTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", ErrTitleTooLong
	}
	return title, nil
}
