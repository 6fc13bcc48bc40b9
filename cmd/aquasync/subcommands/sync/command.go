package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
	gosync "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/sync"
)

type Flag struct {
	BatchSize int `flag:"batch-size" help:"send up to this many items. Default: sync.batchSize of the profile"`
}

// Output is the report of the pass, printed to stdout.
type Output struct {
	Result    string `json:"result"`
	Skipped   string `json:"skipped,omitempty"`
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Removed   int    `json:"removed"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error,omitempty"`
}

func Compose(r gosync.Report) Output {
	o := Output{
		Result:    r.Result(),
		Skipped:   r.Skipped,
		Attempted: r.Attempted,
		Sent:      r.Sent,
		Removed:   r.Removed,
		Remaining: r.Remaining,
	}
	if r.Err != nil {
		o.Error = r.Err.Error()
	}
	return o
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Send queued items to aquafarmd once.",
		Flag{},
		flarc.Args{},
		common.NewQueueTask(Task(common.Dial)),
		flarc.WithDescription(`
Send queued items to aquafarmd once, in the order they were queued.

It stops at the first item which aquafarmd does not accept, and the item and later
ones stay queued. When aquafarmd is unreachable, nothing is sent.
`),
	)
}

func Task(dial common.Dialer) common.QueueTask[Flag] {
	return func(ctx context.Context, env common.Env, q *queue.Queue, cl flarc.Commandline[Flag], _ []any) error {
		flags := cl.Flags()
		if flags.BatchSize < 0 {
			return fmt.Errorf("%w: --batch-size should not be negative", flarc.ErrUsage)
		}
		batchSize := env.Profile.BatchSize()
		if 0 < flags.BatchSize {
			batchSize = flags.BatchSize
		}

		backend, err := dial(env.Profile)
		if err != nil {
			return err
		}
		probe := gosync.NewProbe(backend.Healthz, env.Profile.Timeout(), env.Logger)
		syncer := gosync.New(
			q, backend,
			gosync.WithBatchSize(batchSize),
			gosync.WithTimeout(env.Profile.Timeout()),
			gosync.WithConnectivity(probe),
			gosync.WithLogger(env.Logger),
		)

		r := syncer.TrySync(ctx)

		enc := json.NewEncoder(cl.Stdout())
		enc.SetIndent("", "    ")
		if err := enc.Encode(Compose(r)); err != nil {
			return err
		}
		if r.Err != nil {
			return fmt.Errorf("sync is halted: %w", r.Err)
		}
		return nil
	}
}
