// Package audit defines the audit trail contract used by domain services.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"anbar/internal/core/id"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionFinalize Action = "finalize"
	ActionDelete   Action = "delete"
	ActionUpsert   Action = "upsert"
)

// Entry is one stored audit record.
type Entry struct {
	ID         id.ID           `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   id.ID           `json:"entityId"`
	Action     Action          `json:"action"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Recorder stores a snapshot of an entity after an action. Implementations
// write inside the transaction carried by ctx.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID id.ID, action Action, snapshot any) error
}

// Reader returns the audit history of an entity, newest first.
type Reader interface {
	History(ctx context.Context, entityType string, entityID id.ID, limit int) ([]Entry, error)
}

// Nop discards audit records.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, id.ID, Action, any) error { return nil }
