package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/farms"
	kdb "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils"
)

func CreateFarmHandler(dbfarm kdb.FarmInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		spec, err := bindJSON[farms.Spec](c)
		if err != nil {
			return err
		}
		f, err := dbfarm.Create(c.Request().Context(), spec.Bind())
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusCreated, farms.Compose(f))
	}
}

func ListFarmHandler(dbfarm kdb.FarmInterface) echo.HandlerFunc {
	return func(c echo.Context) error {
		fs, err := dbfarm.List(c.Request().Context())
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, utils.Map(fs, farms.Compose))
	}
}

func GetFarmHandler(dbfarm kdb.FarmInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := dbfarm.Get(c.Request().Context(), c.Param(param))
		if err != nil {
			return fromDB(err)
		}
		return c.JSON(http.StatusOK, farms.Compose(f))
	}
}

func DeleteFarmHandler(dbfarm kdb.FarmInterface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := dbfarm.Delete(c.Request().Context(), c.Param(param)); err != nil {
			return fromDB(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
