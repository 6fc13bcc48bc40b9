package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	configs "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/configs/backend"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/memory"
	kpg "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/idempotency"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/metrics"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/telemetry"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/filewatch"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/logutil"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/try"
)

type Flag struct {
	Config  string `flag:"config" alias:"c" help:"path to the configuration file"`
	Cert    string `flag:"cert" help:"certification file for TLS"`
	CertKey string `flag:"certkey" help:"key of certification file for TLS"`
}

func main() {
	logger := log.Default()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := try.To(flarc.NewCommand(
		"AquaFarm Pro backend server",
		Flag{Config: os.Getenv("AQUAFARM_CONFIG")},
		flarc.Args{},
		func(ctx context.Context, cl flarc.Commandline[Flag], _ []any) error {
			flags := cl.Flags()
			if flags.Config == "" {
				return fmt.Errorf("%w: --config is required", flarc.ErrUsage)
			}
			return serve(ctx, logger, flags)
		},
	)).OrFatal(logger)

	os.Exit(flarc.Run(ctx, cmd))
}

// serve runs the server until ctx is done, restarting it whenever the config file is modified.
func serve(ctx context.Context, logger *log.Logger, flags Flag) error {
	for {
		wctx, stop, err := filewatch.UntilChanged(ctx, flags.Config)
		if err != nil {
			return fmt.Errorf("can not watch configuration: %w", err)
		}
		err = runOnce(wctx, flags)
		stop()

		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		logger.Printf("configuration %s is modified. restarting server.", flags.Config)
	}
}

func runOnce(ctx context.Context, flags Flag) error {
	conf, err := configs.LoadBackendConfig(flags.Config)
	if err != nil {
		return fmt.Errorf("can not read configuration: %w", err)
	}

	zl, err := logutil.New(conf.Loglevel())
	if err != nil {
		return err
	}
	defer zl.Sync()

	db, err := openDatabase(ctx, conf.Storage())
	if err != nil {
		return err
	}
	defer db.Close()

	idem, err := openIdempotency(ctx, conf.Idempotency())
	if err != nil {
		return err
	}
	defer idem.Close()

	var sink telemetry.Sink = telemetry.Null{}
	if ic := conf.Influx(); ic != nil {
		influx := telemetry.NewInflux(telemetry.InfluxConfig{
			URL: ic.URL(), Token: ic.Token(), Org: ic.Org(), Bucket: ic.Bucket(),
		}, zl.Named("telemetry"))
		defer influx.Close()
		sink = influx
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	au := conf.Auth()
	rl := conf.RateLimit()
	e := BuildServer(Deps{
		DB:           db,
		Keyring:      au.Keyring(),
		AuthRequired: au.Required(),
		RateLimit:    rl.RPS(),
		Burst:        rl.Burst(),
		Idempotency:  idem,
		Telemetry:    sink,
		Thresholds:   conf.Alerts(),
		Metrics:      metrics.NewServer(reg),
		Gatherer:     reg,
		Logger:       zl,
		Loglevel:     conf.Loglevel(),
	})

	addr := fmt.Sprintf(":%d", conf.Port())
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		zl.Info("aquafarmd is serving", zap.String("addr", addr), zap.String("storage", string(conf.Storage().Driver())))
		var err error
		if flags.Cert != "" && flags.CertKey != "" {
			err = e.StartTLS(addr, flags.Cert, flags.CertKey)
		} else {
			err = e.Start(addr)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		<-ctx.Done()
		graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return e.Shutdown(graceful)
	})
	return eg.Wait()
}

func openDatabase(ctx context.Context, sc *configs.StorageConfig) (kdb.Database, error) {
	switch sc.Driver() {
	case configs.StorageMemory:
		return memory.New(), nil
	default:
		db, err := kpg.New(ctx, sc.URL(), kpg.WithRole(sc.Role()), kpg.WithMaxConns(sc.MaxConns()))
		if err != nil {
			return nil, fmt.Errorf("can not connect to database: %w", err)
		}
		return db, nil
	}
}

func openIdempotency(ctx context.Context, ic *configs.IdempotencyConfig) (idempotency.Store, error) {
	switch ic.Driver() {
	case configs.IdempotencyNone:
		return idempotency.Null{}, nil
	case configs.IdempotencyRedis:
		r := ic.Redis()
		return idempotency.NewRedis(ctx, r.Addr(), r.Password(), r.DB(), ic.TTL())
	default:
		return idempotency.NewMemory(ic.TTL()), nil
	}
}
