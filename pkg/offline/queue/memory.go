package queue

import (
	"context"
	"slices"
)

// Memory is a Store which keeps nothing across restarts.
type Memory struct {
	next    int64
	records []Record
}

func NewMemory() *Memory {
	return &Memory{next: 1}
}

func (m *Memory) Append(_ context.Context, typ Type, payload []byte) (int64, error) {
	seq := m.next
	m.next++
	m.records = append(m.records, Record{Seq: seq, Type: typ, Payload: slices.Clone(payload)})
	return seq, nil
}

func (m *Memory) Head(_ context.Context, n int) ([]Record, error) {
	n = max(0, min(n, len(m.records)))
	return slices.Clone(m.records[:n]), nil
}

func (m *Memory) DropThrough(_ context.Context, seq int64) (int, error) {
	i := 0
	for i < len(m.records) && m.records[i].Seq <= seq {
		i++
	}
	m.records = slices.Clone(m.records[i:])
	return i, nil
}

func (m *Memory) Len(context.Context) (int, error) {
	return len(m.records), nil
}

func (m *Memory) Close() error {
	return nil
}
