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

// 見積のHTTP。顧客向けは参照番号＋メール、管理者向けはJWT。
type QuoteHandler struct {
	uc *usecase.QuoteUsecase
}

// DI
func NewQuoteHandler(uc *usecase.QuoteUsecase) *QuoteHandler {
	return &QuoteHandler{uc: uc}
}

type QuoteItemRequest struct {
	ProductID   *int64 `json:"product_id"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
}

type QuoteRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	CustomerPhone string             `json:"customer_phone"`
	Discount      int64              `json:"discount"`
	Items         []QuoteItemRequest `json:"items"`
}

type ConvertQuoteRequest struct {
	InstallAddress string `json:"install_address"`
	InstallCity    string `json:"install_city"`
	InstallState   string `json:"install_state"`
}

func (h *QuoteHandler) RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository) {
	//顧客向け（認証なし、参照番号＋メールで本人確認）
	e.GET("/quotes/:reference", h.getByReference)
	e.GET("/quotes/:reference/pdf", h.pdf)
	e.POST("/quotes/:reference/accept", h.accept)
	e.POST("/quotes/:reference/reject", h.reject)

	//管理者向け
	g := e.Group("/admin/quotes")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.TokenVersionGuard(userRepo))
	g.Use(middleware.AdminRoleGuard())

	g.GET("", h.list)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.POST("/:id/send", h.send)
	g.POST("/:id/convert", h.convert)
}

func (h *QuoteHandler) getByReference(c echo.Context) error {
	out, err := h.uc.GetQuoteByReference(c.Request().Context(), c.Param("reference"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *QuoteHandler) pdf(c echo.Context) error {
	data, filename, err := h.uc.RenderPDF(c.Request().Context(), c.Param("reference"), c.QueryParam("email"))
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

func (h *QuoteHandler) accept(c echo.Context) error {
	if err := h.uc.AcceptQuote(c.Request().Context(), c.Param("reference"), c.QueryParam("email")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "quote accepted"})
}

func (h *QuoteHandler) reject(c echo.Context) error {
	if err := h.uc.RejectQuote(c.Request().Context(), c.Param("reference"), c.QueryParam("email")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "quote rejected"})
}

func (h *QuoteHandler) list(c echo.Context) error {
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

	out, err := h.uc.ListQuotes(c.Request().Context(), adminID, usecase.AdminQuoteListInput{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
		Email:  c.QueryParam("email"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *QuoteHandler) create(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.CreateQuote(c.Request().Context(), adminID, toQuoteInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *QuoteHandler) update(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	quoteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req QuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.UpdateQuote(c.Request().Context(), adminID, quoteID, toQuoteInput(req)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "quote updated"})
}

func (h *QuoteHandler) send(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	quoteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.SendQuote(c.Request().Context(), adminID, quoteID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "quote sent"})
}

func (h *QuoteHandler) convert(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	quoteID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ConvertQuoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.ConvertQuote(c.Request().Context(), adminID, quoteID, usecase.ConvertQuoteInput{
		InstallAddress: req.InstallAddress,
		InstallCity:    req.InstallCity,
		InstallState:   req.InstallState,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func toQuoteInput(req QuoteRequest) usecase.QuoteInput {
	items := make([]usecase.QuoteItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.QuoteItemInput{
			ProductID:   it.ProductID,
			Description: it.Description,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return usecase.QuoteInput{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Discount:      req.Discount,
		Items:         items,
	}
}
