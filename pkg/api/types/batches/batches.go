package batches

import (
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

type Spec struct {
	PondId    string    `json:"pondId"`
	Species   string    `json:"species"`
	Count     int       `json:"count"`
	StockedAt time.Time `json:"stockedAt"`
}

func (s Spec) Bind() kdb.BatchSpec {
	return kdb.BatchSpec{PondId: s.PondId, Species: s.Species, Count: s.Count, StockedAt: s.StockedAt}
}

type Detail struct {
	BatchId   string    `json:"batchId"`
	PondId    string    `json:"pondId"`
	Species   string    `json:"species"`
	Count     int       `json:"count"`
	StockedAt time.Time `json:"stockedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func Compose(b kdb.FishBatch) Detail {
	return Detail{
		BatchId: b.BatchId, PondId: b.PondId, Species: b.Species,
		Count: b.Count, StockedAt: b.StockedAt, CreatedAt: b.CreatedAt,
	}
}

// CountChange is the body of PUT /api/batches/:batchId/count.
type CountChange struct {
	Count *int `json:"count"`
}

// FeedingSpec is the body of POST /api/batches/:batchId/feedings.
type FeedingSpec struct {
	FeedKg float64   `json:"feedKg"`
	FedAt  time.Time `json:"fedAt"`
}

func (s FeedingSpec) Bind(batchId string) kdb.FeedingSpec {
	return kdb.FeedingSpec{BatchId: batchId, FeedKg: s.FeedKg, FedAt: s.FedAt}
}

type Feeding struct {
	FeedingId string    `json:"feedingId"`
	BatchId   string    `json:"batchId"`
	FeedKg    float64   `json:"feedKg"`
	FedAt     time.Time `json:"fedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func ComposeFeeding(f kdb.FeedingRecord) Feeding {
	return Feeding{
		FeedingId: f.FeedingId, BatchId: f.BatchId, FeedKg: f.FeedKg, FedAt: f.FedAt, CreatedAt: f.CreatedAt,
	}
}
