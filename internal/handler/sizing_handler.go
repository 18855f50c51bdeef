package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// サイジング計算のHTTP。認証なしの公開API。
type SizingHandler struct {
	uc *usecase.SizingUsecase
}

// DI
func NewSizingHandler(uc *usecase.SizingUsecase) *SizingHandler {
	return &SizingHandler{uc: uc}
}

type SizingRequest struct {
	DailyEnergyWh int64  `json:"daily_energy_wh"`
	PeakLoadW     int64  `json:"peak_load_w"`
	Location      string `json:"location"`
	BackupDays    int64  `json:"backup_days"`
}

func (h *SizingHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/sizing/calculate", h.calculate)
}

func (h *SizingHandler) calculate(c echo.Context) error {
	var req SizingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Calculate(usecase.SizingInput{
		DailyEnergyWh: req.DailyEnergyWh,
		PeakLoadW:     req.PeakLoadW,
		Location:      req.Location,
		BackupDays:    req.BackupDays,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
