// Package errors is the error body of the AquaFarm REST API.
//
// Handlers return *echo.HTTPError built here; echo's error handler renders the
// ErrorMessage as {"message": {"reason": ..., "advice": ...}}.
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Message ErrorMessage `json:"message"`
}

type ErrorMessage struct {
	Reason string `json:"reason"`
	Advice string `json:"advice,omitempty"`
	Cause  error  `json:"-"`
}

func (em *ErrorMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Reason *string `json:"reason"`
		Advice string  `json:"advice"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Reason == nil {
		return fmt.Errorf(`required field missing: "reason"`)
	}
	em.Reason = *raw.Reason
	em.Advice = raw.Advice
	return nil
}

func (em ErrorMessage) Error() string {
	b := new(strings.Builder)
	b.WriteString(em.Reason)
	if em.Advice != "" {
		b.WriteString(" (" + em.Advice + ")")
	}
	if em.Cause != nil {
		b.WriteString(": caused by: " + em.Cause.Error())
	}
	return b.String()
}

func (em ErrorMessage) Unwrap() error {
	return em.Cause
}

type Option func(*ErrorMessage)

func WithAdvice(advice string) Option {
	return func(em *ErrorMessage) { em.Advice = advice }
}

func WithError(err error) Option {
	return func(em *ErrorMessage) { em.Cause = err }
}

func New(code int, reason string, opts ...Option) *echo.HTTPError {
	msg := ErrorMessage{Reason: reason}
	for _, o := range opts {
		o(&msg)
	}
	return echo.NewHTTPError(code, msg).SetInternal(msg)
}

func BadRequest(advice string, err error) *echo.HTTPError {
	return New(http.StatusBadRequest, "bad request", WithAdvice(advice), WithError(err))
}

func Unauthorized(err error) *echo.HTTPError {
	return New(
		http.StatusUnauthorized, "authentication required",
		WithAdvice("send a valid bearer token"), WithError(err),
	)
}

func Forbidden(reason string, err error) *echo.HTTPError {
	return New(http.StatusForbidden, reason, WithError(err))
}

func NotFound() *echo.HTTPError {
	return New(http.StatusNotFound, "not found")
}

func Conflict(reason string, opts ...Option) *echo.HTTPError {
	return New(http.StatusConflict, reason, opts...)
}

func TooManyRequests() *echo.HTTPError {
	return New(http.StatusTooManyRequests, "too many requests", WithAdvice("retry later"))
}

func ServiceUnavailable(advice string, err error) *echo.HTTPError {
	return New(
		http.StatusServiceUnavailable, "service unavailable temporarily",
		WithAdvice(advice), WithError(err),
	)
}

func InternalServerError(err error) *echo.HTTPError {
	return New(http.StatusInternalServerError, "unexpected error", WithError(err))
}
