// Package marshal converts between nullable Go values and pgtype values.
package marshal

import (
	"time"

	"github.com/jackc/pgtype"
)

func Float8(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{Status: pgtype.Null}
	}
	return pgtype.Float8{Float: *v, Status: pgtype.Present}
}

func Float8Ptr(f pgtype.Float8) *float64 {
	if f.Status != pgtype.Present {
		return nil
	}
	v := f.Float
	return &v
}

func Timestamptz(t pgtype.Timestamptz) *time.Time {
	if t.Status != pgtype.Present {
		return nil
	}
	v := t.Time
	return &v
}
