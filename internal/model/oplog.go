package model

import "time"

// OperationLog is an append-only audit record. TargetType/TargetID is a
// loose polymorphic reference, not a foreign key: log rows must outlive
// the entities they point at. Rows are never updated or deleted.
type OperationLog struct {
	ID         int64     `json:"id"`
	UserID     *int64    `json:"user_id"` // nil for system actions
	Action     string    `json:"action"`  // dotted tag, e.g. "contract.create"
	TargetType *string   `json:"target_type"`
	TargetID   *int64    `json:"target_id"`
	Message    *string   `json:"message"`
	ExtraData  *string   `json:"extra_data"` // JSON payload; nil when serialization degraded
	CreatedAt  time.Time `json:"created_at"`
}
