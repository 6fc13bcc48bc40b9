package db

import (
	"context"
	"time"
)

type FeedingRecord struct {
	FeedingId string
	TenantId  string
	BatchId   string
	FeedKg    float64
	FedAt     time.Time
	CreatedAt time.Time
}

type FeedingSpec struct {
	BatchId string
	FeedKg  float64
	FedAt   time.Time
}

func (s FeedingSpec) Validate() error {
	if s.BatchId == "" {
		return Invalid{Field: "batchId", Reason: "required"}
	}
	if err := finite("feedKg", s.FeedKg); err != nil {
		return err
	}
	if s.FeedKg <= 0 {
		return Invalid{Field: "feedKg", Reason: "should be positive"}
	}
	if s.FedAt.IsZero() {
		return Invalid{Field: "fedAt", Reason: "required"}
	}
	return nil
}

type FeedingInterface interface {
	Record(ctx context.Context, spec FeedingSpec) (FeedingRecord, error)

	// List returns feedings of a batch, the latest first.
	List(ctx context.Context, batchId string) ([]FeedingRecord, error)
}
