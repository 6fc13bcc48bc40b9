// Package telemetry mirrors accepted water-quality readings to a time-series store.
package telemetry

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

const Measurement = "water_quality"

// Sink receives readings accepted by the backend.
//
// Mirror never fails the caller; failures are the sink's own business.
type Sink interface {
	Mirror(ctx context.Context, r kdb.WaterReading)
	Close()
}

// Null is a Sink dropping everything.
type Null struct{}

func (Null) Mirror(context.Context, kdb.WaterReading) {}

func (Null) Close() {}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type Influx struct {
	client  influxdb2.Client
	writer  pointWriter
	timeout time.Duration
	logger  *zap.Logger
}

type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	// Timeout bounds one write. Zero means 5 seconds.
	Timeout time.Duration
}

func NewInflux(conf InfluxConfig, logger *zap.Logger) *Influx {
	client := influxdb2.NewClient(conf.URL, conf.Token)
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Influx{
		client:  client,
		writer:  client.WriteAPIBlocking(conf.Org, conf.Bucket),
		timeout: timeout,
		logger:  logger,
	}
}

// Point converts a reading into an InfluxDB point tagged by tenant and pond.
//
// It returns nil when r has no measurement.
func Point(r kdb.WaterReading) *write.Point {
	fields := map[string]interface{}{}
	if r.Temperature != nil {
		fields["temperature"] = *r.Temperature
	}
	if r.PH != nil {
		fields["ph"] = *r.PH
	}
	if r.DissolvedOxygen != nil {
		fields["dissolved_oxygen"] = *r.DissolvedOxygen
	}
	if len(fields) == 0 {
		return nil
	}

	tags := map[string]string{"tenant_id": r.TenantId}
	if r.PondId != nil {
		tags["pond_id"] = *r.PondId
	}
	return influxdb2.NewPoint(Measurement, tags, fields, r.RecordedAt)
}

func (i *Influx) Mirror(ctx context.Context, r kdb.WaterReading) {
	p := Point(r)
	if p == nil {
		return
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.timeout)
	defer cancel()
	if err := i.writer.WritePoint(wctx, p); err != nil {
		i.logger.Warn(
			"failed to mirror reading",
			zap.String("tenant", r.TenantId),
			zap.String("reading", r.ReadingId),
			zap.Error(err),
		)
		return
	}
	i.logger.Debug("reading mirrored", zap.String("tenant", r.TenantId), zap.String("reading", r.ReadingId))
}

func (i *Influx) Close() {
	if i.client != nil {
		i.client.Close()
	}
}
