package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// Handlers はルート登録に必要なハンドラ一式。
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	SolarSystem  *handler.SolarSystemHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Quote        *handler.QuoteHandler
	Warranty     *handler.WarrantyHandler
	Installment  *handler.InstallmentHandler
	Invoice      *handler.InvoiceHandler
	Webhook      *handler.WebhookHandler
	Sizing       *handler.SizingHandler
	Settings     *handler.SettingsHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	Dashboard    *handler.DashboardHandler
}

func registerRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	//公開API
	h.Product.RegisterRoutes(e)
	h.SolarSystem.RegisterRoutes(e)
	h.Sizing.RegisterRoutes(e)
	h.Invoice.RegisterRoutes(e)
	h.Webhook.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg)

	//認証・会員・管理
	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Quote.RegisterRoutes(e, cfg, userRepo)
	h.Warranty.RegisterRoutes(e, cfg, userRepo)
	h.Installment.RegisterRoutes(e, cfg, userRepo)
	h.Settings.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.Dashboard.RegisterRoutes(e, cfg, userRepo)
}
