package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

// LogHandlerFunc logs each request and its response with latency.
//
// The tenant is logged when the request is already scoped.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		begin := time.Now()

		err := next(c)

		t := "-"
		if id, terr := tenant.From(c.Request().Context()); terr == nil {
			t = id.String()
		}
		status := c.Response().Status
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		c.Logger().Infof(
			"%s %s -> %d in %v (tenant=%s) error=%v",
			req.Method, req.URL.Path, status, time.Since(begin), t, err,
		)
		return err
	}
}

// SetLevel sets the level of e.Logger by name: debug, info, warn, error or off.
func SetLevel(e *echo.Echo, loglevel string) {
	switch strings.ToLower(loglevel) {
	case "debug":
		e.Logger.SetLevel(log.DEBUG)
	case "info":
		e.Logger.SetLevel(log.INFO)
	case "warn", "":
		e.Logger.SetLevel(log.WARN)
	case "error":
		e.Logger.SetLevel(log.ERROR)
	case "off":
		e.Logger.SetLevel(log.OFF)
	default:
		e.Logger.SetLevel(log.WARN)
		e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
	}
}
