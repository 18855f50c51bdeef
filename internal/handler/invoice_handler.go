package handler

import (
	"fmt"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 請求書のHTTP。番号＋メールで本人確認する顧客向けAPI。
type InvoiceHandler struct {
	uc *usecase.InvoiceUsecase
}

// DI
func NewInvoiceHandler(uc *usecase.InvoiceUsecase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

func (h *InvoiceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/invoices/:number", h.get)
	e.GET("/invoices/:number/pdf", h.pdf)
}

func (h *InvoiceHandler) get(c echo.Context) error {
	out, err := h.uc.GetForCustomer(c.Request().Context(), c.Param("number"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *InvoiceHandler) pdf(c echo.Context) error {
	data, filename, err := h.uc.RenderPDF(c.Request().Context(), c.Param("number"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}
