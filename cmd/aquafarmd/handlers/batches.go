package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/errors"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/batches"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils"
)

func StockBatchHandler(dbbatch kdb.BatchInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec, err := bindJSON[batches.Spec](c)
		if err != nil {
			return err
		}
		b, err := dbbatch.Stock(c.Request().Context(), spec.Bind())
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusCreated, batches.Compose(b))
	}
}

// ListBatchHandler lists batches of the tenant. Query "pondId" narrows them to a pond.
func ListBatchHandler(dbbatch kdb.BatchInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		bs, err := dbbatch.List(c.Request().Context(), kdb.BatchQuery{PondId: c.QueryParam("pondId")})
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(bs, batches.Compose))
	}
}

func PutBatchCountHandler(dbbatch kdb.BatchInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		change, err := bindJSON[batches.CountChange](c)
		if err != nil {
			return err
		}
		if change.Count == nil {
			return apierr.BadRequest("count is required", nil)
		}
		b, err := dbbatch.SetCount(c.Request().Context(), c.Param(param), *change.Count)
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, batches.Compose(b))
	}
}

func RecordFeedingHandler(dbbatch kdb.BatchInterface, dbfeeding kdb.FeedingInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		spec, err := bindJSON[batches.FeedingSpec](c)
		if err != nil {
			return err
		}
		b, err := dbbatch.Get(ctx, c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		f, err := dbfeeding.Record(ctx, spec.Bind(b.BatchId))
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusCreated, batches.ComposeFeeding(f))
	}
}

func ListFeedingHandler(dbbatch kdb.BatchInterface, dbfeeding kdb.FeedingInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		b, err := dbbatch.Get(ctx, c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		fs, err := dbfeeding.List(ctx, b.BatchId)
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(fs, batches.ComposeFeeding))
	}
}
