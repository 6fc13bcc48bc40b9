package memory

import (
	"context"
	"fmt"
	"slices"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type farms struct{ db *Database }

func (f *farms) Create(ctx context.Context, spec kdb.FarmSpec) (kdb.Farm, error) {
	if err := spec.Validate(); err != nil {
		return kdb.Farm{}, err
	}
	var created kdb.Farm
	err := f.db.update(ctx, func(id tenant.Id, p *partition) error {
		created = kdb.Farm{
			FarmId:    f.db.newId(),
			TenantId:  id.String(),
			Name:      spec.Name,
			Location:  spec.Location,
			CreatedAt: f.db.now(),
		}
		p.farms = append(p.farms, created)
		return nil
	})
	return created, err
}

func (f *farms) Get(ctx context.Context, farmId string) (kdb.Farm, error) {
	var found kdb.Farm
	err := f.db.view(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.farms, func(x kdb.Farm) bool { return x.FarmId == farmId })
		if !ok {
			return kdb.Missing{Table: "farm", Identity: farmId}
		}
		found = p.farms[i]
		return nil
	})
	return found, err
}

func (f *farms) List(ctx context.Context) ([]kdb.Farm, error) {
	out := []kdb.Farm{}
	err := f.db.view(ctx, func(_ tenant.Id, p *partition) error {
		out = append(out, p.farms...)
		return nil
	})
	return out, err
}

func (f *farms) Delete(ctx context.Context, farmId string) error {
	return f.db.update(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.farms, func(x kdb.Farm) bool { return x.FarmId == farmId })
		if !ok {
			return kdb.Missing{Table: "farm", Identity: farmId}
		}
		if _, used := find(p.ponds, func(x kdb.Pond) bool { return x.FarmId == farmId }); used {
			return fmt.Errorf("%w: farm %s still has ponds", kdb.ErrConflict, farmId)
		}
		p.farms = slices.Delete(p.farms, i, i+1)
		return nil
	})
}
