package memory

import (
	"context"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type feedings struct{ db *Database }

func (f *feedings) Record(ctx context.Context, spec kdb.FeedingSpec) (kdb.FeedingRecord, error) {
	if err := spec.Validate(); err != nil {
		return kdb.FeedingRecord{}, err
	}
	var created kdb.FeedingRecord
	err := f.db.update(ctx, func(id tenant.Id, p *partition) error {
		if _, ok := find(p.batches, func(x kdb.FishBatch) bool { return x.BatchId == spec.BatchId }); !ok {
			return kdb.Missing{Table: "fish_batch", Identity: spec.BatchId}
		}
		created = kdb.FeedingRecord{
			FeedingId: f.db.newId(),
			TenantId:  id.String(),
			BatchId:   spec.BatchId,
			FeedKg:    spec.FeedKg,
			FedAt:     spec.FedAt,
			CreatedAt: f.db.now(),
		}
		p.feedings = append(p.feedings, created)
		return nil
	})
	return created, err
}

func (f *feedings) List(ctx context.Context, batchId string) ([]kdb.FeedingRecord, error) {
	out := []kdb.FeedingRecord{}
	err := f.db.view(ctx, func(_ tenant.Id, p *partition) error {
		if _, ok := find(p.batches, func(x kdb.FishBatch) bool { return x.BatchId == batchId }); !ok {
			return kdb.Missing{Table: "fish_batch", Identity: batchId}
		}
		for _, x := range p.feedings {
			if x.BatchId == batchId {
				out = append(out, x)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortLatestFirst(out, func(r kdb.FeedingRecord) int64 { return r.FedAt.UnixNano() })
	return out, nil
}
