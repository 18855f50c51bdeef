package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// DashboardUsecase は管理ダッシュボードの集計。
type DashboardUsecase struct {
	dashboardRepo repo.DashboardRepository
	productRepo   repo.ProductRepository
	quoteRepo     repo.QuoteRepository
	claimRepo     repo.WarrantyClaimRepository
}

func NewDashboardUsecase(
	dashboardRepo repo.DashboardRepository,
	productRepo repo.ProductRepository,
	quoteRepo repo.QuoteRepository,
	claimRepo repo.WarrantyClaimRepository,
) *DashboardUsecase {
	return &DashboardUsecase{
		dashboardRepo: dashboardRepo,
		productRepo:   productRepo,
		quoteRepo:     quoteRepo,
		claimRepo:     claimRepo,
	}
}

const (
	lowStockThreshold = 5
	lowStockLimit     = 20
	monthlyStatMonths = 12
)

type DashboardOutput struct {
	OrdersByStatus   map[string]int64        `json:"orders_by_status"`
	TotalPaidRevenue int64                   `json:"total_paid_revenue"`
	Monthly          []repo.MonthlyOrderStat `json:"monthly"`
	LowStockProducts []model.Product         `json:"low_stock_products"`
	PendingQuotes    int64                   `json:"pending_quotes"`
	PendingClaims    int64                   `json:"pending_claims"`
}

func (u *DashboardUsecase) GetDashboard(ctx context.Context, adminID int64) (DashboardOutput, error) {
	if adminID <= 0 {
		return DashboardOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	byStatus, err := u.dashboardRepo.CountOrdersByStatus(ctx)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	revenue, err := u.dashboardRepo.TotalPaidRevenue(ctx)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	monthly, err := u.dashboardRepo.MonthlyOrderStats(ctx, monthlyStatMonths)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	lowStock, err := u.productRepo.ListLowStock(ctx, lowStockThreshold, lowStockLimit)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//「対応待ち」= 送付済みで返事のない見積とレビュー前の申請
	pendingQuotes, err := u.quoteRepo.CountByStatus(ctx, model.QuoteStatusSent)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	pendingClaims, err := u.claimRepo.CountByStatus(ctx, model.WarrantyClaimStatusSubmitted)
	if err != nil {
		return DashboardOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return DashboardOutput{
		OrdersByStatus:   byStatus,
		TotalPaidRevenue: revenue,
		Monthly:          monthly,
		LowStockProducts: lowStock,
		PendingQuotes:    pendingQuotes,
		PendingClaims:    pendingClaims,
	}, nil
}
