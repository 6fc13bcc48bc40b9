package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type StatusCodeRange int

func (sc StatusCodeRange) String() string {
	switch sc {
	case Status1xx:
		return "informational response"
	case Status2xx:
		return "success"
	case Status3xx:
		return "redirect"
	case Status4xx:
		return "client error"
	case Status5xx:
		return "server error"
	default:
		return fmt.Sprintf("unknown (%d)", sc)
	}
}

func StatusCodeRangeOf(resp *http.Response) StatusCodeRange {
	sc := resp.StatusCode
	if sc < 200 {
		return Status1xx
	}
	if sc < 300 {
		return Status2xx
	}
	if sc < 400 {
		return Status3xx
	}
	if sc < 500 {
		return Status4xx
	}
	if sc < 600 {
		return Status5xx
	}
	return StatusUnknown
}

const (
	StatusUnknown StatusCodeRange = iota
	Status1xx
	Status2xx
	Status3xx
	Status4xx
	Status5xx
)

// StatusError is a response out of 2xx.
type StatusError struct {
	Code  int
	Range StatusCodeRange

	// Reason and Advice are taken from the error body, when it is readable.
	Reason string
	Advice string
}

func (e *StatusError) Error() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "%s (status code = %d)", e.Range, e.Code)
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	if e.Advice != "" {
		b.WriteString(" (" + e.Advice + ")")
	}
	return b.String()
}

// IsClientError tells err is a 4xx response, except 408 and 429 which may pass later.
func IsClientError(err error) bool {
	se := new(StatusError)
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return se.Range == Status4xx
}
