package board

import "encoding/json"

// EntityKind tags which collection an envelope addresses. Each kind has its
// own logical sync channel per team.
type EntityKind string

const (
	KindThought    EntityKind = "thought"
	KindActionItem EntityKind = "action_item"
	KindColumn     EntityKind = "column"
	KindTeam       EntityKind = "team"
)

// SyncKinds lists every kind a client subscribes to for live updates.
func SyncKinds() []EntityKind {
	return []EntityKind{KindThought, KindActionItem, KindColumn, KindTeam}
}

// ChangeType tags what an envelope does to its entity.
type ChangeType string

const (
	ChangePut    ChangeType = "put"
	ChangeDelete ChangeType = "delete"

	// ChangeEndRetro is the broadcast clear: all thoughts go, completed action
	// items go, active action items stay. It carries no payload.
	ChangeEndRetro ChangeType = "end_retro"
)

// Envelope is one entity change as it travels over a sync channel. Put
// payloads carry the complete current server state of the entity (whole-entity
// replace, never a field merge); delete payloads carry only the id.
type Envelope struct {
	Type    ChangeType      `json:"type"`
	Kind    EntityKind      `json:"kind,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Deletion is the payload shape of a delete envelope.
type Deletion struct {
	ID int64 `json:"id"`
}

// ColumnRename is the payload shape of a column put envelope. Only the title
// is client-mutable; the rest identifies the column.
type ColumnRename struct {
	ID    int64  `json:"id"`
	Topic Topic  `json:"topic"`
	Title string `json:"title"`
}

// Snapshot is the bulk-fetch result that seeds a client store at mount and
// after a channel gap.
type Snapshot struct {
	Team        Team         `json:"team"`
	Columns     []Column     `json:"columns"`
	Thoughts    []Thought    `json:"thoughts"`
	ActionItems []ActionItem `json:"action_items"`
}
