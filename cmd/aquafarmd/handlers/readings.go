package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/readings"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/idempotency"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/telemetry"
)

const HeaderIdempotencyKey = "Idempotency-Key"

// Notifier raises notifications for a newly recorded reading.
type Notifier interface {
	Notify(ctx context.Context, r kdb.WaterReading) ([]kdb.Notification, error)
}

type ReadingObserver interface {
	ReadingReceived(created bool)
}

type recordConfig struct {
	idem     idempotency.Store
	notifier Notifier
	sink     telemetry.Sink
	observer ReadingObserver
	logger   *zap.Logger
}

type RecordOption func(*recordConfig)

func WithIdempotency(s idempotency.Store) RecordOption {
	return func(rc *recordConfig) { rc.idem = s }
}

func WithNotifier(n Notifier) RecordOption {
	return func(rc *recordConfig) { rc.notifier = n }
}

func WithTelemetry(s telemetry.Sink) RecordOption {
	return func(rc *recordConfig) { rc.sink = s }
}

func WithReadingObserver(o ReadingObserver) RecordOption {
	return func(rc *recordConfig) { rc.observer = o }
}

func WithLogger(l *zap.Logger) RecordOption {
	return func(rc *recordConfig) { rc.logger = l }
}

type nopReadingObserver struct{}

func (nopReadingObserver) ReadingReceived(bool) {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, kdb.WaterReading) ([]kdb.Notification, error) {
	return nil, nil
}

// RecordReadingHandler records a water-quality reading sent from the field.
//
// The response is 201 Created for a new reading, and 200 OK for a replay:
// a request with an Idempotency-Key (or a clientId) which has been recorded already.
// Replays record nothing, and raise no alerts.
//
// When both Idempotency-Key and clientId are given, they should be the same.
// Idempotency-Key without clientId is used as clientId.
func RecordReadingHandler(dbreading kdb.ReadingInterface, opts ...RecordOption) echo.HandlerFunc {
	rc := &recordConfig{
		idem:     idempotency.Null{},
		notifier: nopNotifier{},
		sink:     telemetry.Null{},
		observer: nopReadingObserver{},
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(rc)
	}

	return func(c echo.Context) error {
		ctx := c.Request().Context()

		spec, err := bindJSON[readings.Spec](c)
		if err != nil {
			return err
		}

		key := c.Request().Header.Get(HeaderIdempotencyKey)
		if key != "" {
			if spec.ClientId == nil {
				spec.ClientId = &key
			} else if *spec.ClientId != key {
				return apierr.BadRequest(
					"clientId and "+HeaderIdempotencyKey+" should be the same", nil,
				)
			}

			readingId, found, err := rc.idem.Lookup(ctx, key)
			if err != nil {
				rc.logger.Warn("idempotency lookup failed", zap.Error(err))
			} else if found {
				r, err := dbreading.Get(ctx, readingId)
				switch {
				case err == nil:
					rc.observer.ReadingReceived(false)
					return c.JSON(http.StatusOK, readings.Compose(r))
				case errors.Is(err, kdb.ErrMissing):
					// stale; fall through to the database.
				default:
					return fromDB(err)
				}
			}
		}

		r, created, err := dbreading.Record(ctx, spec.Bind())
		if err != nil {
			return fromDB(err)
		}
		rc.observer.ReadingReceived(created)

		if key != "" {
			if err := rc.idem.Remember(ctx, key, r.ReadingId); err != nil {
				rc.logger.Warn("failed to remember idempotency key", zap.Error(err))
			}
		}
		if !created {
			return c.JSON(http.StatusOK, readings.Compose(r))
		}

		if _, err := rc.notifier.Notify(ctx, r); err != nil {
			rc.logger.Error(
				"failed to raise water quality alerts", zap.String("readingId", r.ReadingId), zap.Error(err),
			)
		}
		rc.sink.Mirror(ctx, r)

		return c.JSON(http.StatusCreated, readings.Compose(r))
	}
}
