package memory

import (
	"context"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

type readings struct{ db *Database }

func cloneReading(r kdb.WaterReading) kdb.WaterReading {
	r.PondId = clonePtr(r.PondId)
	r.ClientId = clonePtr(r.ClientId)
	r.Temperature = clonePtr(r.Temperature)
	r.PH = clonePtr(r.PH)
	r.DissolvedOxygen = clonePtr(r.DissolvedOxygen)
	return r
}

func (r *readings) Record(ctx context.Context, spec kdb.ReadingSpec) (kdb.WaterReading, bool, error) {
	if err := spec.Validate(); err != nil {
		return kdb.WaterReading{}, false, err
	}
	var (
		rec     kdb.WaterReading
		created bool
	)
	err := r.db.update(ctx, func(id tenant.Id, p *partition) error {
		if spec.ClientId != nil {
			if i, ok := find(p.readings, func(x kdb.WaterReading) bool {
				return x.ClientId != nil && *x.ClientId == *spec.ClientId
			}); ok {
				rec = cloneReading(p.readings[i])
				return nil
			}
		}
		if spec.PondId != nil {
			if _, ok := find(p.ponds, func(x kdb.Pond) bool { return x.PondId == *spec.PondId }); !ok {
				return kdb.Missing{Table: "pond", Identity: *spec.PondId}
			}
		}
		rec = kdb.WaterReading{
			ReadingId:       r.db.newId(),
			TenantId:        id.String(),
			PondId:          clonePtr(spec.PondId),
			ClientId:        clonePtr(spec.ClientId),
			Temperature:     clonePtr(spec.Temperature),
			PH:              clonePtr(spec.PH),
			DissolvedOxygen: clonePtr(spec.DissolvedOxygen),
			RecordedAt:      spec.RecordedAt,
			ReceivedAt:      r.db.now(),
		}
		p.readings = append(p.readings, cloneReading(rec))
		created = true
		return nil
	})
	if err != nil {
		return kdb.WaterReading{}, false, err
	}
	return rec, created, nil
}

func (r *readings) Get(ctx context.Context, readingId string) (kdb.WaterReading, error) {
	var found kdb.WaterReading
	err := r.db.view(ctx, func(_ tenant.Id, p *partition) error {
		i, ok := find(p.readings, func(x kdb.WaterReading) bool { return x.ReadingId == readingId })
		if !ok {
			return kdb.Missing{Table: "water_reading", Identity: readingId}
		}
		found = cloneReading(p.readings[i])
		return nil
	})
	return found, err
}

func (r *readings) List(ctx context.Context, query kdb.ReadingQuery) ([]kdb.WaterReading, error) {
	out := []kdb.WaterReading{}
	err := r.db.view(ctx, func(_ tenant.Id, p *partition) error {
		for i := len(p.readings) - 1; 0 <= i; i-- {
			x := p.readings[i]
			if query.PondId != "" && (x.PondId == nil || *x.PondId != query.PondId) {
				continue
			}
			if query.Since != nil && x.RecordedAt.Before(*query.Since) {
				continue
			}
			if query.Until != nil && !x.RecordedAt.Before(*query.Until) {
				continue
			}
			out = append(out, cloneReading(x))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortLatestFirst(out, func(r kdb.WaterReading) int64 { return r.RecordedAt.UnixNano() })
	if 0 < query.Limit && query.Limit < len(out) {
		out = out[:query.Limit]
	}
	return out, nil
}
