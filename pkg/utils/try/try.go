// Package try folds a (value, error) pair into one expression.
//
//	farm := try.To(db.Farms().Create(ctx, spec)).OrFatal(t)
package try

// Fataler is something which can stop on an error, like *testing.T or *log.Logger.
type Fataler interface {
	Fatal(...any)
}

// Result is a pair of a value and an error. The value is meaningful only when Err is nil.
type Result[T any] struct {
	Value T
	Err   error
}

func To[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Err: err}
}

func (r Result[T]) Get() (T, error) {
	if r.Err != nil {
		return *new(T), r.Err
	}
	return r.Value, nil
}

// OrFatal returns the value, or calls f.Fatal with the error.
func (r Result[T]) OrFatal(f Fataler) T {
	if r.Err == nil {
		return r.Value
	}
	if h, ok := f.(interface{ Helper() }); ok {
		h.Helper()
	}
	f.Fatal(r.Err)
	return *new(T)
}

func (r Result[T]) OrDefault(d T) T {
	if r.Err != nil {
		return d
	}
	return r.Value
}

// Map converts the value of a successful result.
func Map[T, R any](r Result[T], f func(T) R) Result[R] {
	if r.Err != nil {
		return Result[R]{Err: r.Err}
	}
	return Result[R]{Value: f(r.Value)}
}
