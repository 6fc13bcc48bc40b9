package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/notifications"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils"
)

// ListNotificationHandler lists notifications, the latest first. "?unread=true" drops read ones.
func ListNotificationHandler(dbnotification kdb.NotificationInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		query := kdb.NotificationQuery{}
		if u := c.QueryParam("unread"); u != "" {
			b, err := strconv.ParseBool(u)
			if err != nil {
				return apierr.BadRequest("unread should be true or false", err)
			}
			query.UnreadOnly = b
		}
		ns, err := dbnotification.List(c.Request().Context(), query)
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(ns, notifications.Compose))
	}
}

func MarkNotificationReadHandler(dbnotification kdb.NotificationInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		n, err := dbnotification.MarkRead(c.Request().Context(), c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, notifications.Compose(n))
	}
}
