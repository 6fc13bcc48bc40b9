package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/safefile"
)

// File is a Store keeping the whole queue as one JSON list in a file.
//
// Every mutation rewrites the file atomically. It suits small queues.
type File struct {
	path    string
	next    int64
	records []Record
}

// OpenFile loads the queue at path. A missing file is an empty queue.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, next: 1, records: []Record{}}

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	} else if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(content, &f.records); err != nil {
		return nil, fmt.Errorf("queue file %s is broken: %w", path, err)
	}
	for _, r := range f.records {
		if f.next <= r.Seq {
			f.next = r.Seq + 1
		}
	}
	return f, nil
}

func (f *File) save(records []Record) error {
	return safefile.Replace(f.path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(records)
	})
}

func (f *File) Append(_ context.Context, typ Type, payload []byte) (int64, error) {
	seq := f.next
	records := append(slices.Clip(f.records), Record{Seq: seq, Type: typ, Payload: slices.Clone(payload)})
	if err := f.save(records); err != nil {
		return 0, err
	}
	f.records = records
	f.next++
	return seq, nil
}

func (f *File) Head(_ context.Context, n int) ([]Record, error) {
	n = max(0, min(n, len(f.records)))
	return slices.Clone(f.records[:n]), nil
}

func (f *File) DropThrough(_ context.Context, seq int64) (int, error) {
	i := 0
	for i < len(f.records) && f.records[i].Seq <= seq {
		i++
	}
	if i == 0 {
		return 0, nil
	}
	rest := slices.Clone(f.records[i:])
	if err := f.save(rest); err != nil {
		return 0, err
	}
	f.records = rest
	return i, nil
}

func (f *File) Len(context.Context) (int, error) {
	return len(f.records), nil
}

func (f *File) Close() error {
	return nil
}
