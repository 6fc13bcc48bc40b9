package memory

import (
	"cmp"
	"context"
	"slices"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type batches struct{ db *Database }

func (b *batches) Stock(ctx context.Context, spec kdb.BatchSpec) (kdb.FishBatch, error) {
	if err := spec.Validate(); err != nil {
		return kdb.FishBatch{}, err
	}
	var created kdb.FishBatch
	err := b.db.update(ctx, func(id tenant.Id, p *partition) error {
		if _, ok := find(p.ponds, func(x kdb.Pond) bool { return x.PondId == spec.PondId }); !ok {
			return kdb.Missing{Table: "pond", Identity: spec.PondId}
		}
		created = kdb.FishBatch{
			BatchId:   b.db.newId(),
			TenantId:  id.String(),
			PondId:    spec.PondId,
			Species:   spec.Species,
			Count:     spec.Count,
			StockedAt: spec.StockedAt,
			CreatedAt: b.db.now(),
		}
		p.batches = append(p.batches, created)
		return nil
	})
	return created, err
}

func (b *batches) Get(ctx context.Context, batchId string) (kdb.FishBatch, error) {
	var found kdb.FishBatch
	err := b.db.view(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.batches, func(x kdb.FishBatch) bool { return x.BatchId == batchId })
		if !ok {
			return kdb.Missing{Table: "fish_batch", Identity: batchId}
		}
		found = p.batches[i]
		return nil
	})
	return found, err
}

func (b *batches) List(ctx context.Context, query kdb.BatchQuery) ([]kdb.FishBatch, error) {
	out := []kdb.FishBatch{}
	err := b.db.view(ctx, func(_ tenant.Id, p *partition) error {
		for _, x := range p.batches {
			if query.PondId != "" && x.PondId != query.PondId {
				continue
			}
			out = append(out, x)
		}
		return nil
	})
	return out, err
}

func (b *batches) SetCount(ctx context.Context, batchId string, count int) (kdb.FishBatch, error) {
	if count < 0 {
		return kdb.FishBatch{}, kdb.Invalid{Field: "count", Reason: "should not be negative"}
	}
	var updated kdb.FishBatch
	err := b.db.update(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.batches, func(x kdb.FishBatch) bool { return x.BatchId == batchId })
		if !ok {
			return kdb.Missing{Table: "fish_batch", Identity: batchId}
		}
		p.batches[i].Count = count
		updated = p.batches[i]
		return nil
	})
	return updated, err
}

func sortLatestFirst[T any](rows []T, key func(T) int64) {
	slices.SortStableFunc(rows, func(a, b T) int { return cmp.Compare(key(b), key(a)) })
}
