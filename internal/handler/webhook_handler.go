package handler

import (
	"errors"
	"io"
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ゲートウェイWebhookのHTTP。
// 署名検証のためボディは生バイトのまま読む（Bindしない）。
type WebhookHandler struct {
	uc *usecase.PaymentUsecase
}

// DI
func NewWebhookHandler(uc *usecase.PaymentUsecase) *WebhookHandler {
	return &WebhookHandler{uc: uc}
}

func (h *WebhookHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/webhooks/paystack", h.paystack)
	e.POST("/webhooks/flutterwave", h.flutterwave)
}

func (h *WebhookHandler) paystack(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err = h.uc.HandlePaystack(c.Request().Context(), body, c.Request().Header.Get("X-Paystack-Signature"))
	if errors.Is(err, usecase.ErrInvalidWebhookSignature) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}
	if err != nil {
		return writeError(c, err)
	}

	//再送も対象外イベントも200で受ける（ゲートウェイの再送を止める）
	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}

func (h *WebhookHandler) flutterwave(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	err = h.uc.HandleFlutterwave(c.Request().Context(), body, c.Request().Header.Get("verif-hash"))
	if errors.Is(err, usecase.ErrInvalidWebhookSignature) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid signature"})
	}
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "ok"})
}
