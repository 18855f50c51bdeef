package handler

import (
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 分割払いのHTTP。プラン作成と延滞スイープは管理者。
type InstallmentHandler struct {
	uc *usecase.InstallmentUsecase
}

// DI
func NewInstallmentHandler(uc *usecase.InstallmentUsecase) *InstallmentHandler {
	return &InstallmentHandler{uc: uc}
}

type CreatePlanRequest struct {
	DownPayment      int64 `json:"down_payment"`
	InstallmentCount int   `json:"installment_count"`
}

func (h *InstallmentHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//顧客向け。?reference=ORD-xxx&email=a@b.c
	e.GET("/installments", h.getForCustomer)

	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.POST("/orders/:id/installment-plan", h.createPlan)
	g.GET("/orders/:id/installment-plan", h.getForAdmin)
	g.POST("/installments/overdue-sweep", h.overdueSweep)
}

func (h *InstallmentHandler) getForCustomer(c echo.Context) error {
	out, err := h.uc.GetPlanForCustomer(c.Request().Context(), c.QueryParam("reference"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InstallmentHandler) createPlan(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreatePlan(c.Request().Context(), adminID, orderID, usecase.CreatePlanInput{
		DownPayment:      req.DownPayment,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *InstallmentHandler) getForAdmin(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetPlanForOrder(c.Request().Context(), adminID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InstallmentHandler) overdueSweep(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	n, err := h.uc.OverdueSweep(c.Request().Context(), adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"overdue": n})
}
