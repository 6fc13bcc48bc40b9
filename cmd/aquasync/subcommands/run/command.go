package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/metrics"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/ingest"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	gosync "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/sync"
)

type Flag struct {
	Metrics string `flag:"metrics" help:"address to serve metrics on, like :9464. Default: metrics of the profile"`
	NoMQTT  bool   `flag:"no-mqtt" help:"do not subscribe sensor readings even if the profile has mqtt"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Keep sending queued items to aquafarmd until interrupted.",
		Flag{},
		flarc.Args{},
		common.NewQueueTask(Task(common.Dial, nil)),
		flarc.WithDescription(`
Keep sending queued items to aquafarmd until interrupted.

A pass starts when an item is queued, when aquafarmd turns reachable, or every
sync.interval of the profile. While items remain, passes continue without waiting.
After a failed pass, the next one waits longer each time, up to sync.maxBackoff.

If the profile has mqtt, readings published by pond sensors on
aquafarm/<tenant>/ponds/<pond>/water are queued too.
`),
	)
}

// Task runs the daemon. A nil reg means a new registry.
func Task(dial common.Dialer, reg *prometheus.Registry) common.QueueTask[Flag] {
	return func(ctx context.Context, env common.Env, q *queue.Queue, cl flarc.Commandline[Flag], _ []any) error {
		prof := env.Profile
		logger := env.Logger
		flags := cl.Flags()

		backend, err := dial(prof)
		if err != nil {
			return err
		}

		registry := reg
		if registry == nil {
			registry = prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		observer := metrics.NewAgent(registry)

		probe := gosync.NewProbe(backend.Healthz, prof.Timeout(), logger.Named("probe"))
		syncer := gosync.New(
			q, backend,
			gosync.WithBatchSize(prof.BatchSize()),
			gosync.WithTimeout(prof.Timeout()),
			gosync.WithConnectivity(probe),
			gosync.WithLogger(logger.Named("sync")),
			gosync.WithObserver(observer),
		)

		eg, ctx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			probe.Watch(ctx, prof.Interval())
			return nil
		})
		eg.Go(func() error {
			return syncer.Run(ctx, gosync.RunConfig{
				Interval:   prof.Interval(),
				MaxBackoff: prof.MaxBackoff(),
				Wake:       gosync.Merge(ctx, q.Enqueued(), probe.Back()),
			})
		})

		if prof.MQTT != nil && !flags.NoMQTT {
			h := ingest.NewHandler(
				q, prof.Tenant(),
				ingest.WithLogger(logger.Named("ingest")),
				ingest.WithObserver(observer),
			)
			eg.Go(func() error {
				return ingest.Subscribe(ctx, prof.MQTT, prof.MQTTTopic(), h, ingest.SubscribeConfig{})
			})
		}

		addr := prof.Metrics
		if flags.Metrics != "" {
			addr = flags.Metrics
		}
		if addr != "" {
			e := echo.New()
			e.HideBanner = true
			e.HidePort = true
			e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))

			eg.Go(func() error {
				logger.Info("serving metrics", zap.String("address", addr))
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("metrics server: %w", err)
				}
				return nil
			})
			eg.Go(func() error {
				<-ctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return e.Shutdown(sctx)
			})
		}

		logger.Info(
			"aquasync is running",
			zap.String("apiRoot", prof.ApiRoot),
			zap.String("tenant", prof.TenantId),
			zap.String("queue", string(prof.QueueDriver())),
		)
		if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		logger.Info("aquasync is stopped")
		return nil
	}
}
