// Package audit builds the append-only operation log rows written
// alongside every mutation. Building a row never fails: a payload that
// cannot be serialized degrades to a row without extra data instead of
// blocking the business operation.
package audit

import (
	"encoding/json"

	"github.com/fszn/contracts-service/internal/model"
)

// Detail reports how much of the entry survived serialization.
type Detail int

const (
	DetailFull Detail = iota
	// DetailTruncated means the extra payload could not be serialized
	// and the row was written without it.
	DetailTruncated
)

// Entry describes one mutation to record.
type Entry struct {
	Actor      *model.Principal
	Action     string
	TargetType string
	TargetID   int64
	Message    string
	Extra      map[string]interface{}
}

// Build converts an entry into a storable OperationLog row. The result
// is deterministic for a given entry; only the extra payload may
// degrade, never the row itself.
func Build(e Entry) (model.OperationLog, Detail) {
	row := model.OperationLog{
		Action: e.Action,
	}
	if e.Actor != nil {
		userID := e.Actor.UserID
		row.UserID = &userID
	}
	if e.TargetType != "" {
		targetType := e.TargetType
		targetID := e.TargetID
		row.TargetType = &targetType
		row.TargetID = &targetID
	}
	if e.Message != "" {
		message := e.Message
		row.Message = &message
	}

	detail := DetailFull
	if len(e.Extra) > 0 {
		data, err := json.Marshal(e.Extra)
		if err != nil {
			detail = DetailTruncated
		} else {
			extra := string(data)
			row.ExtraData = &extra
		}
	}
	return row, detail
}

// ParseExtra decodes a stored extra payload; malformed or absent data
// yields an empty map so readers never have to branch.
func ParseExtra(extraData *string) map[string]interface{} {
	if extraData == nil || *extraData == "" {
		return map[string]interface{}{}
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(*extraData), &decoded); err != nil {
		return map[string]interface{}{}
	}
	return decoded
}

// MaxPageSize caps every operation-log query.
const MaxPageSize = 200

// Filter narrows an operation-log query. Every field is optional;
// results are always newest first.
type Filter struct {
	ActionContains string
	TargetType     string
	TargetID       *int64
	Limit          int
}

// EffectiveLimit clamps the requested page size to (0, MaxPageSize].
func (f Filter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > MaxPageSize {
		return MaxPageSize
	}
	return f.Limit
}
