package marshal_test

import (
	"testing"
	"time"

	"github.com/jackc/pgtype"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/marshal"
)

func TestFloat8(t *testing.T) {
	t.Run("nil is NULL and back", func(t *testing.T) {
		f := marshal.Float8(nil)
		if f.Status != pgtype.Null {
			t.Errorf("status: %v", f.Status)
		}
		if marshal.Float8Ptr(f) != nil {
			t.Error("NULL becomes a value")
		}
	})

	t.Run("a value roundtrips without aliasing", func(t *testing.T) {
		v := 7.25
		back := marshal.Float8Ptr(marshal.Float8(&v))
		if back == nil || *back != 7.25 {
			t.Fatalf("got %v", back)
		}
		if back == &v {
			t.Error("result aliases the input")
		}
	})

	t.Run("timestamptz NULL is nil", func(t *testing.T) {
		if marshal.Timestamptz(pgtype.Timestamptz{Status: pgtype.Null}) != nil {
			t.Error("NULL becomes a value")
		}
		now := time.Now()
		got := marshal.Timestamptz(pgtype.Timestamptz{Time: now, Status: pgtype.Present})
		if got == nil || !got.Equal(now) {
			t.Errorf("got %v", got)
		}
	})
}
