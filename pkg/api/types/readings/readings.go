package readings

import (
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

// Spec is the body of POST /mobile/water-quality/readings.
type Spec struct {
	PondId          *string    `json:"pondId,omitempty"`
	ClientId        *string    `json:"clientId,omitempty"`
	Temperature     *float64   `json:"temperature,omitempty"`
	PH              *float64   `json:"ph,omitempty"`
	DissolvedOxygen *float64   `json:"dissolvedOxygen,omitempty"`
	RecordedAt      *time.Time `json:"recordedAt"`
}

// Bind converts s into a storage spec.
//
// A missing recordedAt is left zero, and rejected by validation.
func (s Spec) Bind() kdb.ReadingSpec {
	spec := kdb.ReadingSpec{
		PondId:          s.PondId,
		ClientId:        s.ClientId,
		Temperature:     s.Temperature,
		PH:              s.PH,
		DissolvedOxygen: s.DissolvedOxygen,
	}
	if s.RecordedAt != nil {
		spec.RecordedAt = *s.RecordedAt
	}
	return spec
}

type Detail struct {
	ReadingId       string    `json:"readingId"`
	PondId          *string   `json:"pondId,omitempty"`
	ClientId        *string   `json:"clientId,omitempty"`
	Temperature     *float64  `json:"temperature,omitempty"`
	PH              *float64  `json:"ph,omitempty"`
	DissolvedOxygen *float64  `json:"dissolvedOxygen,omitempty"`
	RecordedAt      time.Time `json:"recordedAt"`
	ReceivedAt      time.Time `json:"receivedAt"`
}

func Compose(r kdb.WaterReading) Detail {
	return Detail{
		ReadingId:       r.ReadingId,
		PondId:          r.PondId,
		ClientId:        r.ClientId,
		Temperature:     r.Temperature,
		PH:              r.PH,
		DissolvedOxygen: r.DissolvedOxygen,
		RecordedAt:      r.RecordedAt,
		ReceivedAt:      r.ReceivedAt,
	}
}
