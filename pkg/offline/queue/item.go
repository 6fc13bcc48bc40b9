package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Type tags the kind of a queued mutation.
type Type string

const (
	TypeWaterReading Type = "waterReading"
)

var (
	// ErrUnknownType is caused when a stored item has a tag this build does not know.
	ErrUnknownType = errors.New("unknown item type")

	// ErrInvalidPayload is caused when a payload is rejected before enqueueing.
	ErrInvalidPayload = errors.New("invalid payload")
)

// Payload is a mutation waiting to be sent.
//
// Implementations are listed in this package only; decode switches over all of them.
type Payload interface {
	Type() Type

	// Key identifies the mutation at the backend. It is sent as Idempotency-Key.
	Key() string

	Validate() error

	payload()
}

// WaterReading is a water-quality reading captured on the field.
type WaterReading struct {
	ClientId        string    `json:"clientId"`
	PondId          *string   `json:"pondId,omitempty"`
	Temperature     *float64  `json:"temperature,omitempty"`
	PH              *float64  `json:"ph,omitempty"`
	DissolvedOxygen *float64  `json:"dissolvedOxygen,omitempty"`
	RecordedAt      time.Time `json:"recordedAt"`
}

// NewWaterReading creates a reading with a fresh client id.
func NewWaterReading(recordedAt time.Time) WaterReading {
	return WaterReading{ClientId: uuid.NewString(), RecordedAt: recordedAt}
}

func (WaterReading) Type() Type { return TypeWaterReading }

func (w WaterReading) Key() string { return w.ClientId }

func (WaterReading) payload() {}

func (w WaterReading) Validate() error {
	if _, err := uuid.Parse(w.ClientId); err != nil {
		return fmt.Errorf("%w: clientId should be a UUID: %q", ErrInvalidPayload, w.ClientId)
	}
	if w.RecordedAt.IsZero() {
		return fmt.Errorf("%w: recordedAt is required", ErrInvalidPayload)
	}
	if w.PondId != nil && *w.PondId == "" {
		return fmt.Errorf("%w: pondId should not be empty", ErrInvalidPayload)
	}
	if w.Temperature == nil && w.PH == nil && w.DissolvedOxygen == nil {
		return fmt.Errorf("%w: reading has no measurement", ErrInvalidPayload)
	}
	for name, v := range map[string]*float64{
		"temperature": w.Temperature, "ph": w.PH, "dissolvedOxygen": w.DissolvedOxygen,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidPayload, name)
		}
	}
	if w.PH != nil && (*w.PH < 0 || 14 < *w.PH) {
		return fmt.Errorf("%w: ph should be in [0, 14]", ErrInvalidPayload)
	}
	if w.DissolvedOxygen != nil && *w.DissolvedOxygen < 0 {
		return fmt.Errorf("%w: dissolvedOxygen should not be negative", ErrInvalidPayload)
	}
	return nil
}

// Item is a payload in the queue.
type Item struct {
	// Seq is assigned by the store, increasing in enqueue order.
	Seq int64

	Payload Payload
}

func encode(p Payload) (Type, []byte, error) {
	switch v := p.(type) {
	case WaterReading:
		b, err := json.Marshal(v)
		return TypeWaterReading, b, err
	case *WaterReading:
		b, err := json.Marshal(v)
		return TypeWaterReading, b, err
	default:
		return "", nil, fmt.Errorf("%w: %T", ErrUnknownType, p)
	}
}

func decode(r Record) (Item, error) {
	switch r.Type {
	case TypeWaterReading:
		var w WaterReading
		if err := json.Unmarshal(r.Payload, &w); err != nil {
			return Item{}, fmt.Errorf("item #%d (%s): %w", r.Seq, r.Type, err)
		}
		return Item{Seq: r.Seq, Payload: w}, nil
	default:
		return Item{}, fmt.Errorf("item #%d: %w: %q", r.Seq, ErrUnknownType, r.Type)
	}
}
