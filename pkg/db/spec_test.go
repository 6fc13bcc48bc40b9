package db_test

import (
	"errors"
	"math"
	"testing"
	"time"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

func ptr[T any](v T) *T { return &v }

func TestReadingSpec_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC)

	for name, testcase := range map[string]struct {
		when  kdb.ReadingSpec
		field string // empty means valid
	}{
		"all measurements given": {
			when: kdb.ReadingSpec{
				Temperature: ptr(27.5), PH: ptr(7.2), DissolvedOxygen: ptr(6.1), RecordedAt: now,
			},
		},
		"no measurement but a timestamp": {
			when: kdb.ReadingSpec{RecordedAt: now},
		},
		"missing recordedAt": {
			when:  kdb.ReadingSpec{PH: ptr(7.0)},
			field: "recordedAt",
		},
		"pH above 14": {
			when:  kdb.ReadingSpec{PH: ptr(14.2), RecordedAt: now},
			field: "ph",
		},
		"negative dissolved oxygen": {
			when:  kdb.ReadingSpec{DissolvedOxygen: ptr(-0.1), RecordedAt: now},
			field: "dissolvedOxygen",
		},
		"NaN temperature": {
			when:  kdb.ReadingSpec{Temperature: ptr(math.NaN()), RecordedAt: now},
			field: "temperature",
		},
		"empty client id": {
			when:  kdb.ReadingSpec{ClientId: ptr(""), RecordedAt: now},
			field: "clientId",
		},
	} {
		t.Run(name, func(t *testing.T) {
			err := testcase.when.Validate()
			if testcase.field == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			var invalid kdb.Invalid
			if !errors.As(err, &invalid) {
				t.Fatalf("expected Invalid, got %v", err)
			}
			if invalid.Field != testcase.field {
				t.Errorf("field: expected %s, actual %s", testcase.field, invalid.Field)
			}
			if !errors.Is(err, kdb.ErrInvalid) {
				t.Errorf("Invalid does not unwrap to ErrInvalid")
			}
		})
	}
}

func TestOtherSpecs_Validate(t *testing.T) {
	now := time.Now()

	t.Run("a farm needs a name", func(t *testing.T) {
		if err := (kdb.FarmSpec{Name: "  "}).Validate(); !errors.Is(err, kdb.ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
	t.Run("a pond volume should be positive", func(t *testing.T) {
		err := (kdb.PondSpec{FarmId: "f", Name: "P1", VolumeM3: ptr(0.0)}).Validate()
		if !errors.Is(err, kdb.ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
	t.Run("a batch count should not be negative", func(t *testing.T) {
		err := (kdb.BatchSpec{PondId: "p", Species: "tilapia", Count: -1, StockedAt: now}).Validate()
		if !errors.Is(err, kdb.ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
	t.Run("a feeding needs positive amount", func(t *testing.T) {
		err := (kdb.FeedingSpec{BatchId: "b", FeedKg: 0, FedAt: now}).Validate()
		if !errors.Is(err, kdb.ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
	t.Run("a complete batch is valid", func(t *testing.T) {
		err := (kdb.BatchSpec{PondId: "p", Species: "tilapia", Count: 1200, StockedAt: now}).Validate()
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
