package echoutil

import (
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

// tenantLimiter keeps one token bucket per tenant.
type tenantLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[tenant.Id]*rate.Limiter
}

func (l *tenantLimiter) get(id tenant.Id) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[id]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[id] = lim
	}
	return lim
}

// RateLimitPerTenant refuses requests beyond rps (with burst) for each tenant with 429.
//
// It should be placed after TenantScope. Unscoped requests pass.
// rps <= 0 disables the limit.
func RateLimitPerTenant(rps float64, burst int) echo.MiddlewareFunc {
	if rps <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	if burst < 1 {
		burst = 1
	}
	l := &tenantLimiter{limit: rate.Limit(rps), burst: burst, limiters: map[tenant.Id]*rate.Limiter{}}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := tenant.From(c.Request().Context())
			if err != nil {
				return next(c)
			}
			if !l.get(id).Allow() {
				return apierr.TooManyRequests()
			}
			return next(c)
		}
	}
}
