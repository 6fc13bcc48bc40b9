package echoutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
)

// HTTPErrorHandler renders errors as {"message": {"reason": ..., "advice": ...}}.
//
// Errors other than *echo.HTTPError are rendered as 500 and logged with e.Logger.
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = apierr.InternalServerError(err)
		}
		msg, ok := he.Message.(apierr.ErrorMessage)
		if !ok {
			msg = apierr.ErrorMessage{Reason: fmt.Sprint(he.Message)}
		}

		if http.StatusInternalServerError <= he.Code {
			e.Logger.Error(err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(he.Code)
		} else {
			werr = c.JSON(he.Code, apierr.ErrorResponse{Message: msg})
		}
		if werr != nil {
			e.Logger.Error(werr)
		}
	}
}
