package db

import (
	"context"
	"strings"
	"time"
)

// FishBatch is a group of fish stocked into a pond together.
type FishBatch struct {
	BatchId   string
	TenantId  string
	PondId    string
	Species   string
	Count     int
	StockedAt time.Time
	CreatedAt time.Time
}

type BatchSpec struct {
	PondId    string
	Species   string
	Count     int
	StockedAt time.Time
}

func (s BatchSpec) Validate() error {
	if s.PondId == "" {
		return Invalid{Field: "pondId", Reason: "required"}
	}
	if strings.TrimSpace(s.Species) == "" {
		return Invalid{Field: "species", Reason: "required"}
	}
	if s.Count < 0 {
		return Invalid{Field: "count", Reason: "should not be negative"}
	}
	if s.StockedAt.IsZero() {
		return Invalid{Field: "stockedAt", Reason: "required"}
	}
	return nil
}

type BatchQuery struct {
	PondId string
}

type BatchInterface interface {
	// Stock registers a batch into a pond of the tenant.
	Stock(ctx context.Context, spec BatchSpec) (FishBatch, error)

	Get(ctx context.Context, batchId string) (FishBatch, error)

	List(ctx context.Context, query BatchQuery) ([]FishBatch, error)

	// SetCount records the current head count of a batch (after mortality or harvest).
	SetCount(ctx context.Context, batchId string, count int) (FishBatch, error)
}
