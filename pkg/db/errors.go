package db

import (
	"errors"
	"fmt"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

var (
	// ErrMissing is caused when the requested record is not visible for the tenant.
	//
	// Records of other tenants are indistinguishable from records which do not exist.
	ErrMissing = errors.New("missing")

	// ErrConflict is caused when a write collides with existing records.
	ErrConflict = errors.New("conflict")

	// ErrInvalid is caused when a spec violates domain constraints.
	ErrInvalid = errors.New("invalid")

	// ErrTenantViolation is caused when a write tries to place a record
	// outside of the bound tenant.
	ErrTenantViolation = errors.New("tenant violation")

	// ErrNoTenant is caused when a query is issued without a bound tenant.
	ErrNoTenant = tenant.ErrNoTenant
)

// Missing tells which record is missing.
type Missing struct {
	Table    string
	Identity string
}

func (m Missing) Error() string {
	return fmt.Sprintf("%s is not found in %s", m.Identity, m.Table)
}

func (m Missing) Unwrap() error {
	return ErrMissing
}

// Invalid tells which field violates a constraint.
type Invalid struct {
	Field  string
	Reason string
}

func (i Invalid) Error() string {
	return fmt.Sprintf("%s: %s", i.Field, i.Reason)
}

func (i Invalid) Unwrap() error {
	return ErrInvalid
}
