package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquafarmd/handlers"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/alerts"
	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/idempotency"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/metrics"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/telemetry"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/echoutil"
)

// Deps are components the server is built from.
type Deps struct {
	DB kdb.Database

	Keyring      *auth.Keyring
	AuthRequired bool

	// RateLimit is requests per second per tenant. 0 disables it.
	RateLimit float64
	Burst     int

	Idempotency idempotency.Store
	Telemetry   telemetry.Sink
	Thresholds  alerts.Thresholds

	Metrics  *metrics.Server
	Gatherer prometheus.Gatherer

	Logger   *zap.Logger
	Loglevel string
}

// BuildServer sets up routes of aquafarmd.
//
// /healthz and /metrics are public. Routes under /api and /mobile are tenant-scoped.
func BuildServer(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	echoutil.SetLevel(e, d.Loglevel)
	e.HTTPErrorHandler = echoutil.HTTPErrorHandler(e)
	e.Use(echoutil.LogHandlerFunc)
	e.Use(d.Metrics.Middleware)

	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			return apierr.ServiceUnavailable("storage is not reachable", err)
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))

	hook := echoutil.WithRejectionHook(func(c echo.Context, reason string, err error) {
		d.Metrics.TenantRejected(reason)
		d.Logger.Info(
			"request is rejected",
			zap.String("reason", reason),
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	})
	scoped := []echo.MiddlewareFunc{
		echoutil.Authenticate(d.Keyring, d.AuthRequired, hook),
		echoutil.TenantScope(hook),
		echoutil.RateLimitPerTenant(d.RateLimit, d.Burst),
	}

	api := e.Group("/api", scoped...)
	{
		farmId := "farmId"
		api.GET("/farms", handlers.ListFarmHandler(d.DB.Farms()))
		api.POST("/farms", handlers.CreateFarmHandler(d.DB.Farms()))
		api.GET("/farms/:farmId", handlers.GetFarmHandler(d.DB.Farms(), farmId))
		api.DELETE("/farms/:farmId", handlers.DeleteFarmHandler(d.DB.Farms(), farmId))
	}
	{
		pondId := "pondId"
		api.GET("/ponds", handlers.ListPondHandler(d.DB.Ponds()))
		api.POST("/ponds", handlers.CreatePondHandler(d.DB.Ponds()))
		api.GET("/ponds/:pondId", handlers.GetPondHandler(d.DB.Ponds(), pondId))
		api.DELETE("/ponds/:pondId", handlers.DeletePondHandler(d.DB.Ponds(), pondId))
		api.GET("/ponds/:pondId/readings", handlers.ListPondReadingHandler(d.DB.Ponds(), d.DB.Readings(), pondId))
	}
	{
		batchId := "batchId"
		api.GET("/batches", handlers.ListBatchHandler(d.DB.Batches()))
		api.POST("/batches", handlers.StockBatchHandler(d.DB.Batches()))
		api.PUT("/batches/:batchId/count", handlers.PutBatchCountHandler(d.DB.Batches(), batchId))
		api.GET("/batches/:batchId/feedings", handlers.ListFeedingHandler(d.DB.Batches(), d.DB.Feedings(), batchId))
		api.POST("/batches/:batchId/feedings", handlers.RecordFeedingHandler(d.DB.Batches(), d.DB.Feedings(), batchId))
	}
	{
		api.GET("/notifications", handlers.ListNotificationHandler(d.DB.Notifications()))
		api.PUT(
			"/notifications/:notificationId/read",
			handlers.MarkNotificationReadHandler(d.DB.Notifications(), "notificationId"),
		)
	}

	mobile := e.Group("/mobile", scoped...)
	mobile.POST("/water-quality/readings", handlers.RecordReadingHandler(
		d.DB.Readings(),
		handlers.WithIdempotency(d.Idempotency),
		handlers.WithNotifier(alerts.NewNotifier(
			d.Thresholds, d.DB.Notifications(),
			alerts.WithObserver(func(b alerts.Breach) { d.Metrics.AlertRaised(b.Parameter) }),
		)),
		handlers.WithTelemetry(d.Telemetry),
		handlers.WithReadingObserver(d.Metrics),
		handlers.WithLogger(d.Logger),
	))

	return e
}
