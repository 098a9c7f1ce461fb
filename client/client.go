// Package client is the real-time state engine a board UI builds on. It keeps
// a normalized local copy of the team's entities, merges server-pushed change
// events into it, overlays optimistic local edits with rollback on failure,
// and serves derived views for rendering.
package client

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/FordLabs/retroquest-sub000/board"
	"github.com/FordLabs/retroquest-sub000/client/api"
	"github.com/FordLabs/retroquest-sub000/client/realtime"
	"github.com/FordLabs/retroquest-sub000/client/store"
	"github.com/FordLabs/retroquest-sub000/client/view"
)

// Config assembles a Board engine for one team session.
type Config struct {
	TeamID int64

	// API is the REST client for commands and the bulk fetch.
	API *api.Client

	// SocketURL is the websocket endpoint for this team's sync channels.
	SocketURL string

	// OnError receives every non-fatal failure: dropped envelopes, rejected
	// commands, channel disruptions. Nothing that flows through here is
	// treated as fatal; the local view is at worst temporarily stale.
	OnError func(error)
}

// Board owns one team's client-side state. The UI reads Views and Store,
// issues edits through Mutations or the plain command helpers, and observes
// Loading for first paint.
type Board struct {
	teamID  int64
	api     *api.Client
	url     string
	onError func(error)

	store   *store.Store
	views   *view.Engine
	recon   *Reconciler
	coord   *Coordinator
	sub     *realtime.Subscription
	loading atomic.Bool
}

func New(cfg Config) (*Board, error) {
	if cfg.TeamID == 0 {
		return nil, fmt.Errorf("client: team id is required")
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("client: api client is required")
	}
	b := &Board{
		teamID:  cfg.TeamID,
		api:     cfg.API,
		url:     cfg.SocketURL,
		onError: cfg.OnError,
		store:   store.New(),
	}
	b.views = view.NewEngine(b.store)
	b.recon = NewReconciler(b.store, b.report)
	b.coord = NewCoordinator(b.store, cfg.API, cfg.TeamID, b.report)
	return b, nil
}

// Start performs the initial bulk load and opens the sync channels. Until it
// returns, Loading reports true and no derived view is authoritative.
func (b *Board) Start(ctx context.Context) error {
	b.loading.Store(true)
	defer b.loading.Store(false)

	snap, err := b.api.FetchBoard(ctx, b.teamID)
	if err != nil {
		return fmt.Errorf("client: bulk load: %w", err)
	}
	b.seed(snap)

	if b.url == "" {
		return nil
	}
	sub, err := realtime.Subscribe(realtime.Config{
		URL:     b.url,
		Kinds:   board.SyncKinds(),
		Handler: b.recon.Apply,
		OnReconnect: func() {
			// envelopes may have been missed while disconnected; a fresh bulk
			// fetch reconciles the gap without a reload
			b.resync(context.Background())
		},
		OnError: b.report,
	})
	if err != nil {
		return fmt.Errorf("client: subscribe: %w", err)
	}
	b.sub = sub
	return nil
}

// Stop tears down the sync channels. In-flight optimistic mutations are not
// cancelled; they resolve into a no-longer-observed store.
func (b *Board) Stop() {
	if b.sub != nil {
		b.sub.Close()
	}
}

// Loading reports whether the initial bulk load is still in progress.
func (b *Board) Loading() bool { return b.loading.Load() }

// Store exposes the entity store for direct reads.
func (b *Board) Store() *store.Store { return b.store }

// Views exposes the derived view engine.
func (b *Board) Views() *view.Engine { return b.views }

// Mutations exposes the optimistic mutation coordinator.
func (b *Board) Mutations() *Coordinator { return b.coord }

// Reconcile applies one inbound envelope. Exposed for callers that own their
// transport; the internal subscription feeds this same path.
func (b *Board) Reconcile(env board.Envelope) { b.recon.Apply(env) }

// CreateThought submits a new thought. The local store is deliberately not
// touched: the server assigns the id and the echoed put inserts it.
func (b *Board) CreateThought(ctx context.Context, topic board.Topic, message string) error {
	t, err := board.NewThought(b.teamID, topic, message)
	if err != nil {
		return err
	}
	return b.api.CreateThought(ctx, b.teamID, t.Topic, t.Message)
}

func (b *Board) CreateActionItem(ctx context.Context, task, assignee string) error {
	a, err := board.NewActionItem(b.teamID, task, assignee)
	if err != nil {
		return err
	}
	return b.api.CreateActionItem(ctx, b.teamID, a.Task, a.Assignee)
}

// DeleteThought issues the delete command; the echoed delete envelope removes
// the entity locally.
func (b *Board) DeleteThought(ctx context.Context, thoughtID int64) error {
	return b.api.DeleteThought(ctx, b.teamID, thoughtID)
}

func (b *Board) DeleteActionItem(ctx context.Context, itemID int64) error {
	return b.api.DeleteActionItem(ctx, b.teamID, itemID)
}

// EndRetro issues the board wipe; the broadcast event clears every client,
// this one included.
func (b *Board) EndRetro(ctx context.Context) error {
	return b.api.EndRetro(ctx, b.teamID)
}

func (b *Board) resync(ctx context.Context) {
	snap, err := b.api.FetchBoard(ctx, b.teamID)
	if err != nil {
		b.report(fmt.Errorf("client: resync: %w", err))
		return
	}
	b.seed(snap)
}

func (b *Board) seed(snap board.Snapshot) {
	b.store.SetTeam(snap.Team)
	b.store.ReplaceAllColumns(snap.Columns)
	b.store.ReplaceAllThoughts(snap.Thoughts)
	b.store.ReplaceAllActionItems(snap.ActionItems)
}

func (b *Board) report(err error) {
	if b.onError != nil {
		b.onError(err)
	}
}
