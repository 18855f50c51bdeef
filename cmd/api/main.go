package main

import (
	"context"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	"app/internal/infra/mail"
	"app/internal/infra/pdfgen"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const settingCacheTTL = 10 * time.Minute
const webhookGuardTTL = 48 * time.Hour

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.SolarSystem{},
		&model.InventoryAdjustment{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Invoice{},
		&model.Payment{},
		&model.Quote{},
		&model.QuoteItem{},
		&model.InstallmentPlan{},
		&model.InstallmentPayment{},
		&model.Warranty{},
		&model.WarrantyClaim{},
		&model.Setting{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Redis（設定キャッシュとWebhookガード）
	rdb, err := cache.NewClient(context.Background(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		panic(err)
	}
	settingCache := cache.NewSettingCache(rdb, settingCacheTTL)
	webhookGuard := cache.NewWebhookGuard(rdb, webhookGuardTTL)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	systemRepo := infraRepo.NewSolarSystemGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gormDB)
	settingRepo := infraRepo.NewSettingGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	claimRepo := infraRepo.NewWarrantyClaimGormRepository(gormDB)
	quoteRepo := infraRepo.NewQuoteGormRepository(gormDB)
	dashboardRepo := infraRepo.NewDashboardGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//メールとPDF
	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	notifier := usecase.NewOrderNotifier(mailer, logger)
	renderer := pdfgen.NewRenderer(cfg.CompanyName)

	//Usecase生成
	settingsUC := usecase.NewSettingsUsecase(settingRepo, auditRepo, settingCache, logger)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator(userRepo))
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	systemUC := usecase.NewSolarSystemUsecase(systemRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager, notifier)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo, settingsUC, notifier)
	quoteUC := usecase.NewQuoteUsecase(txManager, auditRepo, settingsUC, notifier, renderer)
	warrantyUC := usecase.NewWarrantyUsecase(txManager, auditRepo, renderer)
	installmentUC := usecase.NewInstallmentUsecase(txManager)
	invoiceUC := usecase.NewInvoiceUsecase(txManager, settingsUC, renderer)
	paymentUC := usecase.NewPaymentUsecase(txManager, webhookGuard, notifier, logger, cfg.PaystackSecret, cfg.FlutterwaveSecret)
	sizingUC := usecase.NewSizingUsecase()
	dashboardUC := usecase.NewDashboardUsecase(dashboardRepo, productRepo, quoteRepo, claimRepo)

	//Handler生成
	cookieSecure := cfg.GoEnv == "prod"
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, cookieSecure),
		Product:      handler.NewProductHandler(productUC),
		SolarSystem:  handler.NewSolarSystemHandler(systemUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Quote:        handler.NewQuoteHandler(quoteUC),
		Warranty:     handler.NewWarrantyHandler(warrantyUC),
		Installment:  handler.NewInstallmentHandler(installmentUC),
		Invoice:      handler.NewInvoiceHandler(invoiceUC),
		Webhook:      handler.NewWebhookHandler(paymentUC),
		Sizing:       handler.NewSizingHandler(sizingUC),
		Settings:     handler.NewSettingsHandler(settingsUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC, invoiceUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, systemUC),
		Dashboard:    handler.NewDashboardHandler(dashboardUC),
	}

	//Server起動
	srv := server.New(cfg, userRepo, handlers)
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := srv.Start(cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
