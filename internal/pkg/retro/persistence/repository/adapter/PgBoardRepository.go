package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/FordLabs/retroquest-sub000/board"
	repository "github.com/FordLabs/retroquest-sub000/internal/pkg/retro/persistence/repository/port"
)

type PgBoardRepository struct {
	pool *pgxpool.Pool
}

func NewPgBoardRepository(pool *pgxpool.Pool) *PgBoardRepository {
	return &PgBoardRepository{pool: pool}
}

var _ repository.BoardRepository = (*PgBoardRepository)(nil)

func (r *PgBoardRepository) GetTeam(ctx context.Context, teamID int64) (board.Team, error) {
	if r == nil || r.pool == nil {
		return board.Team{}, errors.New("PgBoardRepository: nil pool")
	}
	var t board.Team
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, COALESCE(contact_emails, '{}') FROM retro.team WHERE id = $1",
		teamID,
	).Scan(&t.ID, &t.Name, &t.ContactEmails)
	if errors.Is(err, pgx.ErrNoRows) {
		return board.Team{}, repository.ErrNotFound
	}
	return t, err
}

func (r *PgBoardRepository) GetColumns(ctx context.Context, teamID int64) ([]board.Column, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgBoardRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, topic, title
		FROM retro.board_column
		WHERE team_id = $1
		ORDER BY id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []board.Column
	for rows.Next() {
		var c board.Column
		if err := rows.Scan(&c.ID, &c.TeamID, &c.Topic, &c.Title); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

func (r *PgBoardRepository) GetThoughts(ctx context.Context, teamID int64) ([]board.Thought, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgBoardRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, topic, message, hearts, discussed
		FROM retro.thought
		WHERE team_id = $1
		ORDER BY id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ts []board.Thought
	for rows.Next() {
		var t board.Thought
		if err := rows.Scan(&t.ID, &t.TeamID, &t.Topic, &t.Message, &t.Hearts, &t.Discussed); err != nil {
			return nil, err
		}
		ts = append(ts, t)
	}
	return ts, rows.Err()
}

func (r *PgBoardRepository) GetActionItems(ctx context.Context, teamID int64) ([]board.ActionItem, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgBoardRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, task, COALESCE(assignee, ''), completed
		FROM retro.action_item
		WHERE team_id = $1
		ORDER BY id
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []board.ActionItem
	for rows.Next() {
		var a board.ActionItem
		if err := rows.Scan(&a.ID, &a.TeamID, &a.Task, &a.Assignee, &a.Completed); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *PgBoardRepository) CreateThought(ctx context.Context, t board.Thought) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgBoardRepository: nil pool")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO retro.thought (team_id, topic, message, hearts, discussed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, t.TeamID, t.Topic, t.Message, t.Hearts, t.Discussed).Scan(&id)
	return id, err
}

func (r *PgBoardRepository) GetThought(ctx context.Context, teamID, thoughtID int64) (board.Thought, error) {
	if r == nil || r.pool == nil {
		return board.Thought{}, errors.New("PgBoardRepository: nil pool")
	}
	var t board.Thought
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_id, topic, message, hearts, discussed
		FROM retro.thought
		WHERE team_id = $1 AND id = $2
	`, teamID, thoughtID).Scan(&t.ID, &t.TeamID, &t.Topic, &t.Message, &t.Hearts, &t.Discussed)
	if errors.Is(err, pgx.ErrNoRows) {
		return board.Thought{}, repository.ErrNotFound
	}
	return t, err
}

func (r *PgBoardRepository) UpdateThought(ctx context.Context, t board.Thought) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE retro.thought
		SET topic = $3, message = $4, hearts = $5, discussed = $6
		WHERE team_id = $1 AND id = $2
	`, t.TeamID, t.ID, t.Topic, t.Message, t.Hearts, t.Discussed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgBoardRepository) DeleteThought(ctx context.Context, teamID, thoughtID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"DELETE FROM retro.thought WHERE team_id = $1 AND id = $2",
		teamID, thoughtID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgBoardRepository) CreateActionItem(ctx context.Context, a board.ActionItem) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, errors.New("PgBoardRepository: nil pool")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO retro.action_item (team_id, task, assignee, completed)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id
	`, a.TeamID, a.Task, a.Assignee, a.Completed).Scan(&id)
	return id, err
}

func (r *PgBoardRepository) GetActionItem(ctx context.Context, teamID, itemID int64) (board.ActionItem, error) {
	if r == nil || r.pool == nil {
		return board.ActionItem{}, errors.New("PgBoardRepository: nil pool")
	}
	var a board.ActionItem
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_id, task, COALESCE(assignee, ''), completed
		FROM retro.action_item
		WHERE team_id = $1 AND id = $2
	`, teamID, itemID).Scan(&a.ID, &a.TeamID, &a.Task, &a.Assignee, &a.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return board.ActionItem{}, repository.ErrNotFound
	}
	return a, err
}

func (r *PgBoardRepository) UpdateActionItem(ctx context.Context, a board.ActionItem) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE retro.action_item
		SET task = $3, assignee = NULLIF($4, ''), completed = $5
		WHERE team_id = $1 AND id = $2
	`, a.TeamID, a.ID, a.Task, a.Assignee, a.Completed)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgBoardRepository) DeleteActionItem(ctx context.Context, teamID, itemID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"DELETE FROM retro.action_item WHERE team_id = $1 AND id = $2",
		teamID, itemID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgBoardRepository) GetColumn(ctx context.Context, teamID, columnID int64) (board.Column, error) {
	if r == nil || r.pool == nil {
		return board.Column{}, errors.New("PgBoardRepository: nil pool")
	}
	var c board.Column
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_id, topic, title
		FROM retro.board_column
		WHERE team_id = $1 AND id = $2
	`, teamID, columnID).Scan(&c.ID, &c.TeamID, &c.Topic, &c.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return board.Column{}, repository.ErrNotFound
	}
	return c, err
}

func (r *PgBoardRepository) UpdateColumnTitle(ctx context.Context, teamID, columnID int64, title string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE retro.board_column SET title = $3 WHERE team_id = $1 AND id = $2",
		teamID, columnID, title)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PgBoardRepository) EndRetro(ctx context.Context, teamID int64) error {
	if r == nil || r.pool == nil {
		return errors.New("PgBoardRepository: nil pool")
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM retro.thought WHERE team_id = $1", teamID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, "DELETE FROM retro.action_item WHERE team_id = $1 AND completed", teamID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
