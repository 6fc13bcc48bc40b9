package db

import (
	"context"
	"fmt"
	"math"
	"time"
)

// WaterReading is a water-quality measurement of a pond.
//
// Each measurement is optional; a sensor may report only some of them.
type WaterReading struct {
	ReadingId string
	TenantId  string
	PondId    *string

	// ClientId is the id generated on the capturing device.
	// It is unique in a tenant, and makes recording idempotent.
	ClientId *string

	Temperature     *float64 // degree Celsius
	PH              *float64
	DissolvedOxygen *float64 // mg/L

	RecordedAt time.Time
	ReceivedAt time.Time
}

type ReadingSpec struct {
	PondId   *string
	ClientId *string

	Temperature     *float64
	PH              *float64
	DissolvedOxygen *float64

	RecordedAt time.Time
}

func (s ReadingSpec) Validate() error {
	if s.RecordedAt.IsZero() {
		return Invalid{Field: "recordedAt", Reason: "required"}
	}
	if s.ClientId != nil && *s.ClientId == "" {
		return Invalid{Field: "clientId", Reason: "should not be empty"}
	}
	if s.PondId != nil && *s.PondId == "" {
		return Invalid{Field: "pondId", Reason: "should not be empty"}
	}
	if s.Temperature != nil {
		if err := finite("temperature", *s.Temperature); err != nil {
			return err
		}
	}
	if s.PH != nil {
		if err := finite("ph", *s.PH); err != nil {
			return err
		}
		if *s.PH < 0 || 14 < *s.PH {
			return Invalid{Field: "ph", Reason: "should be in [0, 14]"}
		}
	}
	if s.DissolvedOxygen != nil {
		if err := finite("dissolvedOxygen", *s.DissolvedOxygen); err != nil {
			return err
		}
		if *s.DissolvedOxygen < 0 {
			return Invalid{Field: "dissolvedOxygen", Reason: "should not be negative"}
		}
	}
	return nil
}

func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalid{Field: field, Reason: fmt.Sprintf("not a finite number: %v", v)}
	}
	return nil
}

type ReadingQuery struct {
	PondId string

	// Since and Until bound RecordedAt; Since is inclusive, Until is exclusive.
	Since *time.Time
	Until *time.Time

	// Limit caps the number of results. 0 means no limit.
	Limit int
}

type ReadingInterface interface {
	// Record stores a reading for the tenant.
	//
	// When a reading with the same ClientId is already recorded for the tenant,
	// Record returns the recorded one and false, and stores nothing.
	//
	// # Returns
	//
	// - WaterReading: the reading stored (or found)
	//
	// - bool: true when the reading is newly stored
	//
	// - error: ErrMissing when PondId is not a pond of the tenant.
	Record(ctx context.Context, spec ReadingSpec) (WaterReading, bool, error)

	Get(ctx context.Context, readingId string) (WaterReading, error)

	// List returns readings, the latest first.
	List(ctx context.Context, query ReadingQuery) ([]WaterReading, error)
}
