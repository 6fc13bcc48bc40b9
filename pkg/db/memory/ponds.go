package memory

import (
	"context"
	"fmt"
	"slices"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type ponds struct{ db *Database }

func clonePond(p kdb.Pond) kdb.Pond {
	p.VolumeM3 = clonePtr(p.VolumeM3)
	return p
}

func (r *ponds) Create(ctx context.Context, spec kdb.PondSpec) (kdb.Pond, error) {
	if err := spec.Validate(); err != nil {
		return kdb.Pond{}, err
	}
	var created kdb.Pond
	err := r.db.update(ctx, func(id tenant.Id, p *partition) error {
		if _, ok := find(p.farms, func(x kdb.Farm) bool { return x.FarmId == spec.FarmId }); !ok {
			return kdb.Missing{Table: "farm", Identity: spec.FarmId}
		}
		created = kdb.Pond{
			PondId:    r.db.newId(),
			TenantId:  id.String(),
			FarmId:    spec.FarmId,
			Name:      spec.Name,
			VolumeM3:  clonePtr(spec.VolumeM3),
			CreatedAt: r.db.now(),
		}
		p.ponds = append(p.ponds, created)
		return nil
	})
	return clonePond(created), err
}

func (r *ponds) Get(ctx context.Context, pondId string) (kdb.Pond, error) {
	var found kdb.Pond
	err := r.db.view(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.ponds, func(x kdb.Pond) bool { return x.PondId == pondId })
		if !ok {
			return kdb.Missing{Table: "pond", Identity: pondId}
		}
		found = clonePond(p.ponds[i])
		return nil
	})
	return found, err
}

func (r *ponds) List(ctx context.Context, query kdb.PondQuery) ([]kdb.Pond, error) {
	out := []kdb.Pond{}
	err := r.db.view(ctx, func(_ tenant.Id, p *partition) error {
		for _, x := range p.ponds {
			if query.FarmId != "" && x.FarmId != query.FarmId {
				continue
			}
			out = append(out, clonePond(x))
		}
		return nil
	})
	return out, err
}

func (r *ponds) Delete(ctx context.Context, pondId string) error {
	return r.db.update(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.ponds, func(x kdb.Pond) bool { return x.PondId == pondId })
		if !ok {
			return kdb.Missing{Table: "pond", Identity: pondId}
		}
		if _, used := find(p.batches, func(x kdb.FishBatch) bool { return x.PondId == pondId }); used {
			return fmt.Errorf("%w: pond %s has fish batches", kdb.ErrConflict, pondId)
		}
		if _, used := find(p.readings, func(x kdb.WaterReading) bool {
			return x.PondId != nil && *x.PondId == pondId
		}); used {
			return fmt.Errorf("%w: pond %s has readings", kdb.ErrConflict, pondId)
		}
		p.ponds = slices.Delete(p.ponds, i, i+1)
		return nil
	})
}
