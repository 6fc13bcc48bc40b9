package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/metrics"
)

func TestServerMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewServer(reg)

	e := echo.New()
	e.Use(m.Middleware)
	e.GET("/api/ponds/:pondId", func(c echo.Context) error {
		if c.Param("pondId") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	for _, target := range []string{"/api/ponds/p1", "/api/ponds/p2", "/api/ponds/missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	expected := `
# HELP aquafarm_http_requests_total Total number of HTTP requests
# TYPE aquafarm_http_requests_total counter
aquafarm_http_requests_total{method="GET",route="/api/ponds/:pondId",status="200"} 2
aquafarm_http_requests_total{method="GET",route="/api/ponds/:pondId",status="404"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "aquafarm_http_requests_total"); err != nil {
		t.Error(err)
	}
}

func TestAgent(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := metrics.NewAgent(reg)

	a.Pass("drained")
	a.Pass("halted")
	a.Sent(3)
	a.Failed()
	a.QueueDepth(7)

	expected := `
# HELP aquasync_queue_depth Items waiting in the offline queue
# TYPE aquasync_queue_depth gauge
aquasync_queue_depth 7
# HELP aquasync_sync_items_total Queue items by send outcome (sent, failed)
# TYPE aquasync_sync_items_total counter
aquasync_sync_items_total{outcome="failed"} 1
aquasync_sync_items_total{outcome="sent"} 3
`
	if err := testutil.GatherAndCompare(
		reg, strings.NewReader(expected), "aquasync_queue_depth", "aquasync_sync_items_total",
	); err != nil {
		t.Error(err)
	}
}
