package client

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client/store"
)

// Reconciler turns inbound change envelopes into store mutations. It is the
// single dispatch point for every server-pushed change, so channel handlers
// stay dumb pipes.
//
// Reconciliation is idempotent: channels deliver at least once, and replaying
// an envelope leaves the store exactly as applying it once did. A malformed
// envelope is dropped and reported, never raised, so one bad message cannot
// stall the ones behind it.
type Reconciler struct {
	store   *store.Store
	onError func(error)
}

func NewReconciler(s *store.Store, onError func(error)) *Reconciler {
	return &Reconciler{store: s, onError: onError}
}

// Apply reconciles one envelope. It performs no network I/O and never panics
// on payloads it does not recognize.
func (r *Reconciler) Apply(env board.Envelope) {
	switch env.Type {
	case board.ChangePut:
		r.applyPut(env)
	case board.ChangeDelete:
		r.applyDelete(env)
	case board.ChangeEndRetro:
		r.applyEndRetro()
	default:
		r.report(fmt.Errorf("reconcile: unknown change type %q", env.Type))
	}
}

func (r *Reconciler) applyPut(env board.Envelope) {
	switch env.Kind {
	case board.KindThought:
		var t board.Thought
		if err := json.Unmarshal(env.Payload, &t); err != nil {
			r.report(fmt.Errorf("reconcile: thought payload: %w", err))
			return
		}
		r.store.UpsertThought(t)

	case board.KindActionItem:
		var a board.ActionItem
		if err := json.Unmarshal(env.Payload, &a); err != nil {
			r.report(fmt.Errorf("reconcile: action item payload: %w", err))
			return
		}
		r.store.UpsertActionItem(a)

	case board.KindColumn:
		var c board.ColumnRename
		if err := json.Unmarshal(env.Payload, &c); err != nil {
			r.report(fmt.Errorf("reconcile: column payload: %w", err))
			return
		}
		// Only the title is client-mutable; every other column field is
		// server-owned and arrives via the bulk fetch. A rename for a column
		// we have never seen is dropped rather than half-invented.
		cur, ok := r.store.ColumnByID(c.ID)
		if !ok {
			slog.Debug("reconcile: rename for unknown column", "column", c.ID)
			return
		}
		cur.Title = c.Title
		r.store.UpsertColumn(cur)

	case board.KindTeam:
		var t board.Team
		if err := json.Unmarshal(env.Payload, &t); err != nil {
			r.report(fmt.Errorf("reconcile: team payload: %w", err))
			return
		}
		r.store.SetTeam(t)

	default:
		r.report(fmt.Errorf("reconcile: put for unknown kind %q", env.Kind))
	}
}

func (r *Reconciler) applyDelete(env board.Envelope) {
	var d board.Deletion
	if err := json.Unmarshal(env.Payload, &d); err != nil {
		r.report(fmt.Errorf("reconcile: delete payload: %w", err))
		return
	}
	switch env.Kind {
	case board.KindThought:
		r.store.RemoveThought(d.ID)
	case board.KindActionItem:
		r.store.RemoveActionItem(d.ID)
	default:
		r.report(fmt.Errorf("reconcile: delete for unknown kind %q", env.Kind))
	}
}

// applyEndRetro wipes the board for the next retro: every thought goes,
// completed action items go, active ones carry over.
func (r *Reconciler) applyEndRetro() {
	r.store.ClearThoughts(nil)
	r.store.ClearActionItems(func(a board.ActionItem) bool { return a.Completed })
}

func (r *Reconciler) report(err error) {
	slog.Warn("dropped envelope", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}
