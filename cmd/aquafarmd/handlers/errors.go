package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
)

// fromDB converts errors from package db into HTTP errors.
func fromDB(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, kdb.ErrNoTenant):
		return apierr.Forbidden("tenant context is required", err)
	case errors.Is(err, kdb.ErrTenantViolation):
		return apierr.Forbidden("the record belongs to another tenant", err)
	case errors.Is(err, kdb.ErrMissing):
		return apierr.New(http.StatusNotFound, "not found", apierr.WithError(err))
	case errors.Is(err, kdb.ErrInvalid):
		return apierr.BadRequest(err.Error(), err)
	case errors.Is(err, kdb.ErrConflict):
		return apierr.Conflict(
			"conflicting with other records",
			apierr.WithAdvice("remove records depending on it first"), apierr.WithError(err),
		)
	}
	return apierr.InternalServerError(err)
}

// bindJSON decodes a JSON request body.
func bindJSON[T any](c echo.Context) (T, error) {
	var v T
	req := c.Request()
	mt, _, err := mime.ParseMediaType(req.Header.Get(echo.HeaderContentType))
	if err != nil || strings.ToLower(mt) != echo.MIMEApplicationJSON {
		return v, apierr.BadRequest("unexpected content type. it should be application/json", err)
	}
	if err := json.NewDecoder(req.Body).Decode(&v); err != nil {
		return v, apierr.BadRequest("can not understand the requested json", err)
	}
	return v, nil
}
