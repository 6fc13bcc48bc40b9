package enqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/youta-t/flarc"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

type Flag struct {
	Pond            string `flag:"pond" help:"id of the pond measured. Optional."`
	Temperature     string `flag:"temperature" help:"water temperature in Celsius"`
	PH              string `flag:"ph" help:"pH of water, in [0, 14]"`
	DissolvedOxygen string `flag:"do" help:"dissolved oxygen in mg/L"`
	RecordedAt      string `flag:"recorded-at" help:"when it is measured, in RFC3339. Default: now"`
	ClientId        string `flag:"client-id" help:"UUID identifying the reading. Default: a new one"`
}

// Output is printed to stdout after an item is enqueued.
type Output struct {
	Seq      int64  `json:"seq"`
	ClientId string `json:"clientId"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Queue a water-quality reading. It is sent by the next sync.",
		Flag{},
		flarc.Args{},
		common.NewQueueTask(Task(time.Now)),
		flarc.WithDescription(`
Queue a water-quality reading into the offline queue of the profile.

At least one of --temperature, --ph and --do is required.
The reading is kept on this device until "aquasync sync" or "aquasync run" delivers it.
`),
	)
}

func optionalFloat(name, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: --%s should be a number: %q", flarc.ErrUsage, name, s)
	}
	return &v, nil
}

// Reading builds a reading from flags.
func Reading(flags Flag, now func() time.Time) (queue.WaterReading, error) {
	w := queue.WaterReading{ClientId: flags.ClientId}
	if w.ClientId == "" {
		w.ClientId = uuid.NewString()
	}
	if flags.RecordedAt == "" {
		w.RecordedAt = now().UTC()
	} else {
		at, err := time.Parse(time.RFC3339, flags.RecordedAt)
		if err != nil {
			return w, fmt.Errorf("%w: --recorded-at should be RFC3339: %q", flarc.ErrUsage, flags.RecordedAt)
		}
		w.RecordedAt = at
	}
	if flags.Pond != "" {
		pond := flags.Pond
		w.PondId = &pond
	}

	var err error
	if w.Temperature, err = optionalFloat("temperature", flags.Temperature); err != nil {
		return w, err
	}
	if w.PH, err = optionalFloat("ph", flags.PH); err != nil {
		return w, err
	}
	if w.DissolvedOxygen, err = optionalFloat("do", flags.DissolvedOxygen); err != nil {
		return w, err
	}
	return w, nil
}

func Task(now func() time.Time) common.QueueTask[Flag] {
	return func(ctx context.Context, env common.Env, q *queue.Queue, cl flarc.Commandline[Flag], _ []any) error {
		w, err := Reading(cl.Flags(), now)
		if err != nil {
			return err
		}

		item, err := q.Enqueue(ctx, w)
		if err != nil {
			if errors.Is(err, queue.ErrInvalidPayload) {
				return fmt.Errorf("%w: %w", flarc.ErrUsage, err)
			}
			return err
		}
		env.Logger.Info("reading is queued", zap.Int64("seq", item.Seq), zap.String("clientId", w.ClientId))

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		return enc.Encode(Output{Seq: item.Seq, ClientId: w.ClientId})
	}
}
