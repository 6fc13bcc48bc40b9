package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/ponds"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/readings"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils"
)

func CreatePondHandler(dbpond kdb.PondInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec, err := bindJSON[ponds.Spec](c)
		if err != nil {
			return err
		}
		p, err := dbpond.Create(c.Request().Context(), spec.Bind())
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusCreated, ponds.Compose(p))
	}
}

// ListPondHandler lists ponds of the tenant. Query "farmId" narrows them to a farm.
func ListPondHandler(dbpond kdb.PondInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		ps, err := dbpond.List(c.Request().Context(), kdb.PondQuery{FarmId: c.QueryParam("farmId")})
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(ps, ponds.Compose))
	}
}

func GetPondHandler(dbpond kdb.PondInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := dbpond.Get(c.Request().Context(), c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, ponds.Compose(p))
	}
}

func DeletePondHandler(dbpond kdb.PondInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := dbpond.Delete(c.Request().Context(), c.Param(param)); err != nil {
			return fromDB(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func parseTimeQuery(c echo.Context, name string) (*time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apierr.BadRequest(name+" should be RFC3339 date-time", err)
	}
	return &t, nil
}

// ListPondReadingHandler lists readings of a pond, the latest first.
//
// Queries:
//
// - since, until: RFC3339. since is inclusive, until is exclusive.
//
// - limit: positive integer.
func ListPondReadingHandler(dbpond kdb.PondInterface, dbreading kdb.ReadingInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		query := kdb.ReadingQuery{}
		{
			since, err := parseTimeQuery(c, "since")
			if err != nil {
				return err
			}
			until, err := parseTimeQuery(c, "until")
			if err != nil {
				return err
			}
			query.Since, query.Until = since, until

			if l := c.QueryParam("limit"); l != "" {
				n, err := strconv.Atoi(l)
				if err != nil || n <= 0 {
					return apierr.BadRequest("limit should be a positive integer", err)
				}
				query.Limit = n
			}
		}

		p, err := dbpond.Get(ctx, c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		query.PondId = p.PondId

		rs, err := dbreading.List(ctx, query)
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(rs, readings.Compose))
	}
}
