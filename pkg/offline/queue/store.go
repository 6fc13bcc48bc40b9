package queue

import (
	"context"
	"encoding/json"
)

// Record is a stored item before decoding.
type Record struct {
	Seq     int64           `json:"seq"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Store persists records in order.
//
// Store implementations need not be safe for concurrent use; Queue serializes calls.
type Store interface {
	// Append persists a record at the tail and returns its sequence number.
	//
	// It returns after the record is durable.
	Append(ctx context.Context, typ Type, payload []byte) (int64, error)

	// Head returns up to n records from the head, in order.
	Head(ctx context.Context, n int) ([]Record, error)

	// DropThrough removes records whose seq is seq or less, and returns how many are removed.
	DropThrough(ctx context.Context, seq int64) (int, error)

	Len(ctx context.Context) (int, error)

	Close() error
}
