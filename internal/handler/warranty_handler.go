package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 保証のHTTP。顧客向けは参照番号＋メール、レビューは管理者。
type WarrantyHandler struct {
	uc *usecase.WarrantyUsecase
}

// DI
func NewWarrantyHandler(uc *usecase.WarrantyUsecase) *WarrantyHandler {
	return &WarrantyHandler{uc: uc}
}

type SubmitClaimRequest struct {
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

type UpdateClaimRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}

func (h *WarrantyHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//顧客向け
	e.GET("/warranties", h.listByEmail)
	e.GET("/warranties/:reference", h.getByReference)
	e.GET("/warranties/:reference/certificate", h.certificate)
	e.POST("/warranties/:reference/claims", h.submitClaim)

	//管理者向け
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("/claims", h.listClaims)
	g.PATCH("/claims/:id", h.updateClaim)
	g.POST("/warranties/expire-sweep", h.expireSweep)
}

func (h *WarrantyHandler) listByEmail(c echo.Context) error {
	out, err := h.uc.ListByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WarrantyHandler) getByReference(c echo.Context) error {
	out, err := h.uc.GetByReference(c.Request().Context(), c.Param("reference"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WarrantyHandler) certificate(c echo.Context) error {
	data, filename, err := h.uc.RenderCertificate(c.Request().Context(), c.Param("reference"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (h *WarrantyHandler) submitClaim(c echo.Context) error {
	var req SubmitClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	claim, err := h.uc.SubmitClaim(c.Request().Context(), c.Param("reference"), c.QueryParam("email"), usecase.SubmitClaimInput{
		Subject: req.Subject,
		Detail:  req.Detail,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, claim)
}

func (h *WarrantyHandler) listClaims(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, err := queryInt(c, "page", 1)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
	}

	out, err := h.uc.ListClaims(c.Request().Context(), adminID, usecase.AdminClaimListInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *WarrantyHandler) updateClaim(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	claimID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateClaimRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateClaim(c.Request().Context(), adminID, claimID, usecase.UpdateClaimInput{
		Status:    req.Status,
		AdminNote: req.AdminNote,
	}); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "claim updated"})
}

func (h *WarrantyHandler) expireSweep(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	n, err := h.uc.ExpireSweep(c.Request().Context(), adminID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"expired": n})
}
