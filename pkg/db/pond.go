package db

import (
	"context"
	"strings"
	"time"
)

type Pond struct {
	PondId    string
	TenantId  string
	FarmId    string
	Name      string
	VolumeM3  *float64
	CreatedAt time.Time
}

type PondSpec struct {
	FarmId   string
	Name     string
	VolumeM3 *float64
}

func (s PondSpec) Validate() error {
	if s.FarmId == "" {
		return Invalid{Field: "farmId", Reason: "required"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return Invalid{Field: "name", Reason: "required"}
	}
	if s.VolumeM3 != nil {
		if err := finite("volumeM3", *s.VolumeM3); err != nil {
			return err
		}
		if *s.VolumeM3 <= 0 {
			return Invalid{Field: "volumeM3", Reason: "should be positive"}
		}
	}
	return nil
}

type PondQuery struct {
	// FarmId narrows ponds to a farm. Empty means all ponds of the tenant.
	FarmId string
}

type PondInterface interface {
	// Create registers a pond in a farm of the tenant.
	//
	// It causes ErrMissing when the farm is not of the tenant.
	Create(ctx context.Context, spec PondSpec) (Pond, error)

	Get(ctx context.Context, pondId string) (Pond, error)

	List(ctx context.Context, query PondQuery) ([]Pond, error)

	// Delete removes a pond.
	//
	// It causes ErrConflict when readings or batches refer the pond.
	Delete(ctx context.Context, pondId string) error
}
