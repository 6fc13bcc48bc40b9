// Package tenant carries the tenant of a request through context.Context.
//
// There is no process-wide "current tenant": every operation on tenant-owned data
// takes the tenant from the context it is given, and refuses to run without one.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrNoTenant is caused when tenant-owned data is touched without a tenant bound.
	ErrNoTenant = errors.New("no tenant is bound")

	// ErrTenantMismatch is caused when the header and the principal disagree.
	ErrTenantMismatch = errors.New("tenant in header does not match the principal")

	// ErrInvalidTenant is caused when a tenant id is not a UUID.
	ErrInvalidTenant = errors.New("tenant id is not a valid UUID")
)

// Id identifies a tenant. It is always the canonical (lowercase, hyphenated) UUID form.
type Id string

func (id Id) String() string {
	return string(id)
}

// Parse validates s as a tenant id.
func Parse(s string) (Id, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTenant, s)
	}
	return Id(u.String()), nil
}

// Principal is an authenticated caller.
type Principal struct {
	Subject string

	// Tenant which the principal belongs to. Empty when the token carries no tenant.
	Tenant Id
}

// Resolve decides the tenant of a request.
//
// # Args
//
// - header: value of the X-Tenant-Id header. Empty means "not given".
//
// - principal: authenticated caller, or nil.
//
// # Returns
//
// - Id: resolved tenant. Empty when neither source gives one.
//
// - error: ErrInvalidTenant when the header is malformed,
// ErrTenantMismatch when header and principal disagree.
func Resolve(header string, principal *Principal) (Id, error) {
	var fromHeader Id
	if strings.TrimSpace(header) != "" {
		id, err := Parse(header)
		if err != nil {
			return "", err
		}
		fromHeader = id
	}

	var fromPrincipal Id
	if principal != nil {
		fromPrincipal = principal.Tenant
	}

	switch {
	case fromHeader != "" && fromPrincipal != "":
		if fromHeader != fromPrincipal {
			return "", fmt.Errorf(
				"%w: header=%s, principal=%s", ErrTenantMismatch, fromHeader, fromPrincipal,
			)
		}
		return fromHeader, nil
	case fromHeader != "":
		return fromHeader, nil
	default:
		return fromPrincipal, nil
	}
}

type tenantKey struct{}

type principalKey struct{}

// With returns a child context bound to tenant id.
func With(ctx context.Context, id Id) context.Context {
	return context.WithValue(ctx, tenantKey{}, id)
}

// From returns the tenant bound to ctx.
//
// It returns ErrNoTenant when ctx has no tenant.
func From(ctx context.Context) (Id, error) {
	id, ok := ctx.Value(tenantKey{}).(Id)
	if !ok || id == "" {
		return "", ErrNoTenant
	}
	return id, nil
}

// WithPrincipal returns a child context carrying the authenticated caller.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, &p)
}

// PrincipalFrom returns the authenticated caller, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
