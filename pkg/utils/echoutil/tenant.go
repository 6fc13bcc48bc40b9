package echoutil

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

const HeaderTenantId = "X-Tenant-Id"

// Rejection reasons passed to RejectionHook.
const (
	RejectUnauthenticated = "unauthenticated"
	RejectInvalidToken    = "invalid-token"
	RejectInvalidTenant   = "invalid-tenant"
	RejectMismatch        = "tenant-mismatch"
	RejectNoTenant        = "no-tenant"
)

// RejectionHook observes requests refused by Authenticate or TenantScope.
type RejectionHook func(c echo.Context, reason string, err error)

type scopeConfig struct {
	onReject RejectionHook
}

type ScopeOption func(*scopeConfig)

func WithRejectionHook(h RejectionHook) ScopeOption {
	return func(c *scopeConfig) { c.onReject = h }
}

func newScopeConfig(opts []ScopeOption) scopeConfig {
	c := scopeConfig{onReject: func(echo.Context, string, error) {}}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Authenticate verifies the bearer token of a request and puts its principal
// into the request context.
//
// When required is false, a request without Authorization header passes
// unauthenticated. A present but invalid token is always refused.
func Authenticate(kr *auth.Keyring, required bool, opts ...ScopeOption) echo.MiddlewareFunc {
	conf := newScopeConfig(opts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header.Get(echo.HeaderAuthorization)
			if h == "" {
				if required {
					conf.onReject(c, RejectUnauthenticated, nil)
					return apierr.Unauthorized(nil)
				}
				return next(c)
			}

			scheme, token, ok := strings.Cut(h, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				conf.onReject(c, RejectInvalidToken, nil)
				return apierr.Unauthorized(errors.New("authorization is not a bearer token"))
			}
			claims, err := kr.Verify(strings.TrimSpace(token))
			if err != nil {
				conf.onReject(c, RejectInvalidToken, err)
				return apierr.Unauthorized(err)
			}
			p, err := claims.Principal()
			if err != nil {
				conf.onReject(c, RejectInvalidToken, err)
				return apierr.Unauthorized(err)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(tenant.WithPrincipal(req.Context(), p)))
			return next(c)
		}
	}
}

// TenantScope resolves the tenant of a request from the X-Tenant-Id header and
// the authenticated principal, and binds it to the request context.
//
// Requests are refused before reaching handlers when the header and the principal
// disagree (403), the header is malformed (400), or no tenant is given at all (403).
func TenantScope(opts ...ScopeOption) echo.MiddlewareFunc {
	conf := newScopeConfig(opts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := tenant.Resolve(req.Header.Get(HeaderTenantId), tenant.PrincipalFrom(req.Context()))
			switch {
			case errors.Is(err, tenant.ErrInvalidTenant):
				conf.onReject(c, RejectInvalidTenant, err)
				return apierr.BadRequest(HeaderTenantId+" should be a UUID", err)
			case errors.Is(err, tenant.ErrTenantMismatch):
				conf.onReject(c, RejectMismatch, err)
				return apierr.Forbidden("tenant mismatch", err)
			case err != nil:
				return apierr.InternalServerError(err)
			case id == "":
				conf.onReject(c, RejectNoTenant, tenant.ErrNoTenant)
				return apierr.Forbidden("tenant context is required", tenant.ErrNoTenant)
			}

			c.SetRequest(req.WithContext(tenant.With(req.Context(), id)))
			return next(c)
		}
	}
}
