package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

type writerFunc func(ctx context.Context, point ...*write.Point) error

func (f writerFunc) WritePoint(ctx context.Context, point ...*write.Point) error {
	return f(ctx, point...)
}

func ref[T any](v T) *T { return &v }

func TestPoint(t *testing.T) {
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("it tags tenant and pond and carries present measurements only", func(t *testing.T) {
		p := Point(kdb.WaterReading{
			ReadingId: "r-1", TenantId: "t-1", PondId: ref("p-1"),
			PH: ref(7.5), DissolvedOxygen: ref(6.25), RecordedAt: at,
		})
		line := write.PointToLineProtocol(p, time.Second)
		assert.Equal(t, "water_quality,pond_id=p-1,tenant_id=t-1 dissolved_oxygen=6.25,ph=7.5 1777636800\n", line)
	})

	t.Run("a reading without measurement has no point", func(t *testing.T) {
		assert.Nil(t, Point(kdb.WaterReading{TenantId: "t-1", RecordedAt: at}))
	})
}

func TestInfluxMirror(t *testing.T) {
	t.Run("a write failure is logged and swallowed", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		calls := 0
		sink := &Influx{
			writer: writerFunc(func(context.Context, ...*write.Point) error {
				calls++
				return errors.New("influx is down")
			}),
			timeout: time.Second,
			logger:  zap.New(core),
		}
		sink.Mirror(context.Background(), kdb.WaterReading{ReadingId: "r-1", TenantId: "t-1", PH: ref(7.0)})

		assert.Equal(t, 1, calls)
		assert.Equal(t, 1, logs.FilterMessage("failed to mirror reading").Len())
	})

	t.Run("a reading without measurement is not written", func(t *testing.T) {
		sink := &Influx{
			writer: writerFunc(func(context.Context, ...*write.Point) error {
				t.Error("unexpected write")
				return nil
			}),
			timeout: time.Second,
			logger:  zap.NewNop(),
		}
		sink.Mirror(context.Background(), kdb.WaterReading{ReadingId: "r-1", TenantId: "t-1"})
	})
}
