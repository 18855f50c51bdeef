package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /systems の公開API（パッケージ構成の一覧・詳細）
type SolarSystemHandler struct {
	uc *usecase.SolarSystemUsecase
}

// DI
func NewSolarSystemHandler(uc *usecase.SolarSystemUsecase) *SolarSystemHandler {
	return &SolarSystemHandler{uc: uc}
}

func (h *SolarSystemHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/systems", h.list)
	e.GET("/systems/:id", h.detail)
}

func (h *SolarSystemHandler) list(c echo.Context) error {
	page, err := queryInt(c, "page", 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	minPrice, err := queryInt64Ptr(c, "min_price")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_price"})
	}
	maxPrice, err := queryInt64Ptr(c, "max_price")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid max_price"})
	}
	minWatts, err := queryInt64Ptr(c, "min_watts")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid min_watts"})
	}

	out, err := h.uc.ListPublicSystems(c.Request().Context(), usecase.ListSystemsInput{
		Page:     page,
		Limit:    limit,
		Q:        c.QueryParam("q"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		MinWatts: minWatts,
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SolarSystemHandler) detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	s, err := h.uc.GetSystemDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
