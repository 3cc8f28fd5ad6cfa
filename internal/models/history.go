package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Payment sides accepted by the ledger.
const (
	PaymentSideStudent = "student"
	PaymentSideWriter  = "writer"
)

// ActivityEntry is a free-form audit note on an assignment.
type ActivityEntry struct {
	At    time.Time `json:"at"`
	Actor string    `json:"actor,omitempty"`
	Note  string    `json:"note"`
}

// PaymentEntry records a single payment against one side of an assignment.
type PaymentEntry struct {
	Amount float64   `json:"amount"`
	Side   string    `json:"side"`
	At     time.Time `json:"at"`
	Note   string    `json:"note,omitempty"`
}

// StatusChange records a status transition, including writer reassignments.
type StatusChange struct {
	From         string    `json:"from"`
	To           string    `json:"to"`
	At           time.Time `json:"at"`
	Note         string    `json:"note,omitempty"`
	FromWriterID *int64    `json:"fromWriterId,omitempty"`
	ToWriterID   *int64    `json:"toWriterId,omitempty"`
}

// Attachment references an uploaded file on an assignment.
type Attachment struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// EmptyHistory is the initial value for every history column.
func EmptyHistory() types.JSONText {
	return types.JSONText(`[]`)
}

// MarshalEntry encodes a history entry as a single-element JSON array so it
// can be appended to a JSONB column with the || operator.
func MarshalEntry(entry interface{}) (types.JSONText, error) {
	raw, err := json.Marshal([]interface{}{entry})
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}
	return types.JSONText(raw), nil
}

// AppendEntry returns doc with entry appended, treating empty docs as [].
func AppendEntry(doc types.JSONText, entry interface{}) (types.JSONText, error) {
	var entries []json.RawMessage
	if len(doc) > 0 {
		if err := json.Unmarshal(doc, &entries); err != nil {
			return nil, fmt.Errorf("decode history: %w", err)
		}
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal history entry: %w", err)
	}
	entries = append(entries, raw)
	out, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return types.JSONText(out), nil
}

// DecodePayments parses a payment_history column.
func DecodePayments(doc types.JSONText) ([]PaymentEntry, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	var entries []PaymentEntry
	if err := json.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("decode payment history: %w", err)
	}
	return entries, nil
}

// DecodeStatusHistory parses a status_history column.
func DecodeStatusHistory(doc types.JSONText) ([]StatusChange, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	var entries []StatusChange
	if err := json.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("decode status history: %w", err)
	}
	return entries, nil
}

// DecodeActivityLog parses an activity_log column.
func DecodeActivityLog(doc types.JSONText) ([]ActivityEntry, error) {
	if len(doc) == 0 {
		return nil, nil
	}
	var entries []ActivityEntry
	if err := json.Unmarshal(doc, &entries); err != nil {
		return nil, fmt.Errorf("decode activity log: %w", err)
	}
	return entries, nil
}
