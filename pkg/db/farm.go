package db

import (
	"context"
	"strings"
	"time"
)

type Farm struct {
	FarmId    string
	TenantId  string
	Name      string
	Location  string
	CreatedAt time.Time
}

type FarmSpec struct {
	Name     string
	Location string
}

func (s FarmSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return Invalid{Field: "name", Reason: "required"}
	}
	return nil
}

type FarmInterface interface {
	// Create registers a new farm for the tenant.
	Create(ctx context.Context, spec FarmSpec) (Farm, error)

	// Get returns a farm. It causes ErrMissing when the farm is not of the tenant.
	Get(ctx context.Context, farmId string) (Farm, error)

	// List returns farms of the tenant, ordered by creation.
	List(ctx context.Context) ([]Farm, error)

	// Delete removes a farm. It causes ErrConflict when ponds remain in the farm.
	Delete(ctx context.Context, farmId string) error
}
