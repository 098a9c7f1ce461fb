package repository

import (
	"context"
	"errors"

	"github.com/FordLabs/retroquest-sub000/board"
)

// ErrNotFound is returned when a lookup or targeted mutation matches no row.
var ErrNotFound = errors.New("board repository: not found")

// BoardRepository defines persistence operations for the retro domain.
type BoardRepository interface {
	GetTeam(ctx context.Context, teamID int64) (board.Team, error)
	GetColumns(ctx context.Context, teamID int64) ([]board.Column, error)
	GetThoughts(ctx context.Context, teamID int64) ([]board.Thought, error)
	GetActionItems(ctx context.Context, teamID int64) ([]board.ActionItem, error)

	CreateThought(ctx context.Context, t board.Thought) (int64, error)
	GetThought(ctx context.Context, teamID, thoughtID int64) (board.Thought, error)
	UpdateThought(ctx context.Context, t board.Thought) error
	DeleteThought(ctx context.Context, teamID, thoughtID int64) error

	CreateActionItem(ctx context.Context, a board.ActionItem) (int64, error)
	GetActionItem(ctx context.Context, teamID, itemID int64) (board.ActionItem, error)
	UpdateActionItem(ctx context.Context, a board.ActionItem) error
	DeleteActionItem(ctx context.Context, teamID, itemID int64) error

	GetColumn(ctx context.Context, teamID, columnID int64) (board.Column, error)
	UpdateColumnTitle(ctx context.Context, teamID, columnID int64, title string) error

	// EndRetro wipes the team's board in one transaction: every thought goes,
	// completed action items go, active ones stay.
	EndRetro(ctx context.Context, teamID int64) error
}
