// Package alerts checks water-quality readings against thresholds.
package alerts

import (
	"context"
	"fmt"

	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

// Parameter names used in Breach.
const (
	ParameterPH              = "ph"
	ParameterDissolvedOxygen = "dissolvedOxygen"
	ParameterTemperature     = "temperature"
)

// Range is an acceptable interval. A nil bound is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

func (r Range) contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && *r.Max < v {
		return false
	}
	return true
}

func (r Range) String() string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("[%g, %g]", *r.Min, *r.Max)
	case r.Min != nil:
		return fmt.Sprintf(">= %g", *r.Min)
	case r.Max != nil:
		return fmt.Sprintf("<= %g", *r.Max)
	default:
		return "(any)"
	}
}

type Thresholds struct {
	PH              Range
	DissolvedOxygen Range // mg/L
	Temperature     Range // degree Celsius
}

func bound(v float64) *float64 {
	return &v
}

// Default thresholds for warm-water fish farming.
func Default() Thresholds {
	return Thresholds{
		PH:              Range{Min: bound(6.5), Max: bound(8.5)},
		DissolvedOxygen: Range{Min: bound(5)},
		Temperature:     Range{Min: bound(20), Max: bound(32)},
	}
}

// Breach is a measurement outside of its range.
type Breach struct {
	Parameter  string
	Value      float64
	Acceptable Range
}

func (b Breach) Message(r kdb.WaterReading) string {
	where := "unassigned sensor"
	if r.PondId != nil {
		where = "pond " + *r.PondId
	}
	return fmt.Sprintf(
		"%s is %g at %s (acceptable: %s), recorded at %s",
		b.Parameter, b.Value, where, b.Acceptable, r.RecordedAt.UTC().Format("2006-01-02T15:04:05Z"),
	)
}

// Evaluate returns breaches of r, in the order pH, dissolved oxygen, temperature.
//
// Measurements absent from r are not evaluated.
func (t Thresholds) Evaluate(r kdb.WaterReading) []Breach {
	breaches := []Breach{}
	check := func(param string, v *float64, rng Range) {
		if v == nil || rng.contains(*v) {
			return
		}
		breaches = append(breaches, Breach{Parameter: param, Value: *v, Acceptable: rng})
	}
	check(ParameterPH, r.PH, t.PH)
	check(ParameterDissolvedOxygen, r.DissolvedOxygen, t.DissolvedOxygen)
	check(ParameterTemperature, r.Temperature, t.Temperature)
	return breaches
}

// Notifier raises a notification per breach of a reading.
type Notifier struct {
	thresholds    Thresholds
	notifications kdb.NotificationInterface
	onRaise       func(Breach)
}

type Option func(*Notifier)

// WithObserver sets a function called for each raised notification.
func WithObserver(f func(Breach)) Option {
	return func(n *Notifier) { n.onRaise = f }
}

func NewNotifier(t Thresholds, notifications kdb.NotificationInterface, opts ...Option) *Notifier {
	n := &Notifier{thresholds: t, notifications: notifications, onRaise: func(Breach) {}}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Notify creates notifications for breaches of r in the tenant of ctx.
//
// It stops at the first failure and returns notifications created so far.
func (n *Notifier) Notify(ctx context.Context, r kdb.WaterReading) ([]kdb.Notification, error) {
	created := []kdb.Notification{}
	for _, b := range n.thresholds.Evaluate(r) {
		readingId := r.ReadingId
		nt, err := n.notifications.Create(ctx, kdb.NotificationSpec{
			Kind:      kdb.NotificationWaterQuality,
			Message:   b.Message(r),
			PondId:    r.PondId,
			ReadingId: &readingId,
		})
		if err != nil {
			return created, err
		}
		n.onRaise(b)
		created = append(created, nt)
	}
	return created, nil
}
