package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	kq "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/offline/queue"
)

type Flag struct {
	Limit    int  `flag:"limit" alias:"n" help:"show up to this many items from the head"`
	DropHead bool `flag:"drop-head" help:"remove the head item before listing. Use it to skip an item the backend keeps refusing."`
}

type Entry struct {
	Seq     int64      `json:"seq"`
	Type    kq.Type    `json:"type"`
	Key     string     `json:"key"`
	Payload kq.Payload `json:"payload"`
}

type Output struct {
	Dropped *int64  `json:"dropped,omitempty"`
	Length  int     `json:"length"`
	Items   []Entry `json:"items"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Show items waiting in the offline queue, from the head.",
		Flag{Limit: 20},
		flarc.Args{},
		common.NewQueueTask(Task),
	)
}

func Task(ctx context.Context, _ common.Env, q *kq.Queue, cl flarc.Commandline[Flag], _ []any) error {
	limit := cl.Flags().Limit
	if limit <= 0 {
		return fmt.Errorf("%w: --limit should be positive", flarc.ErrUsage)
	}

	out := Output{}
	if cl.Flags().DropHead {
		seq, ok, err := q.DropHead(ctx)
		if err != nil {
			return err
		}
		if ok {
			out.Dropped = &seq
		}
	}

	length, err := q.Len(ctx)
	if err != nil {
		return err
	}
	items, peekErr := q.Peek(ctx, limit)

	out.Length = length
	out.Items = make([]Entry, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, Entry{
			Seq: it.Seq, Type: it.Payload.Type(), Key: it.Payload.Key(), Payload: it.Payload,
		})
	}

	enc := json.NewEncoder(cl.Stdout())
	enc.SetIndent("", "    ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	// items after an undecodable one are not shown.
	return peekErr
}
