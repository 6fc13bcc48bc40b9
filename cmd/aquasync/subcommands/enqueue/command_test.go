package enqueue_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/enqueue"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/internal/commandline"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/internal/testenv"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

var now = time.Date(2026, 5, 1, 6, 30, 0, 0, time.UTC)

func clock() time.Time { return now }

func TestReading(t *testing.T) {
	t.Run("flags are converted into a reading", func(t *testing.T) {
		w, err := enqueue.Reading(enqueue.Flag{
			Pond:            "pond-1",
			Temperature:     "26.5",
			PH:              "7.1",
			DissolvedOxygen: "6",
			RecordedAt:      "2026-05-01T05:00:00+03:00",
			ClientId:        "0b8e5c7a-59a4-4b61-8d2c-aaaaaaaaaaaa",
		}, clock)
		require.NoError(t, err)

		assert.Equal(t, "0b8e5c7a-59a4-4b61-8d2c-aaaaaaaaaaaa", w.ClientId)
		assert.Equal(t, "pond-1", *w.PondId)
		assert.Equal(t, 26.5, *w.Temperature)
		assert.Equal(t, 7.1, *w.PH)
		assert.Equal(t, 6.0, *w.DissolvedOxygen)
		assert.True(t, w.RecordedAt.Equal(time.Date(2026, 5, 1, 2, 0, 0, 0, time.UTC)))
	})

	t.Run("without optional flags, it is a reading of now with a new client id", func(t *testing.T) {
		w, err := enqueue.Reading(enqueue.Flag{PH: "7"}, clock)
		require.NoError(t, err)

		assert.NotEmpty(t, w.ClientId)
		assert.Nil(t, w.PondId)
		assert.Nil(t, w.Temperature)
		assert.True(t, w.RecordedAt.Equal(now))
	})

	for name, flag := range map[string]enqueue.Flag{
		"a temperature which is not a number": {Temperature: "warm"},
		"a recorded-at which is not RFC3339":  {PH: "7", RecordedAt: "yesterday"},
	} {
		t.Run(name+" is a usage error", func(t *testing.T) {
			_, err := enqueue.Reading(flag, clock)
			assert.ErrorIs(t, err, flarc.ErrUsage)
		})
	}
}

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("a reading is queued and its seq is printed", func(t *testing.T) {
		env, q := testenv.New(t, testenv.Profile())
		cl, stdout := commandline.New("aquasync enqueue", enqueue.Flag{PH: "7.4", Pond: "pond-1"})

		require.NoError(t, enqueue.Task(clock)(ctx, env, q, cl, nil))

		out := enqueue.Output{}
		require.NoError(t, json.Unmarshal([]byte(stdout.String()), &out))

		items, err := q.Peek(ctx, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, items[0].Seq, out.Seq)
		assert.Equal(t, out.ClientId, items[0].Payload.Key())

		w := items[0].Payload.(queue.WaterReading)
		assert.Equal(t, 7.4, *w.PH)
	})

	t.Run("a reading without measurement is refused and not queued", func(t *testing.T) {
		env, q := testenv.New(t, testenv.Profile())
		cl, _ := commandline.New("aquasync enqueue", enqueue.Flag{Pond: "pond-1"})

		err := enqueue.Task(clock)(ctx, env, q, cl, nil)
		assert.ErrorIs(t, err, flarc.ErrUsage)
		assert.ErrorIs(t, err, queue.ErrInvalidPayload)

		n, err := q.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("a pH out of range is refused", func(t *testing.T) {
		env, q := testenv.New(t, testenv.Profile())
		cl, _ := commandline.New("aquasync enqueue", enqueue.Flag{PH: "15"})

		assert.ErrorIs(t, enqueue.Task(clock)(ctx, env, q, cl, nil), queue.ErrInvalidPayload)
	})
}
