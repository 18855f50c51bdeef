package repository

import (
	"context"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type DashboardGormRepository struct {
	db *gorm.DB
}

func NewDashboardGormRepository(db *gorm.DB) *DashboardGormRepository {
	return &DashboardGormRepository{db: db}
}

type statusCountRow struct {
	Status string
	Count  int64
}

func (r *DashboardGormRepository) CountOrdersByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []statusCountRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *DashboardGormRepository) TotalPaidRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("payment_status = ?", model.PaymentStatusPaid).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DashboardGormRepository) MonthlyOrderStats(ctx context.Context, months int) ([]repo.MonthlyOrderStat, error) {
	if months <= 0 || months > 36 {
		months = 12
	}

	//月でGROUP BY。売上はPAIDだけ合算する。
	var rows []repo.MonthlyOrderStat
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select(`to_char(created_at, 'YYYY-MM') as month,
			count(*) as count,
			COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'PAID'), 0) as revenue`).
		Where("created_at >= date_trunc('month', now()) - make_interval(months => ?)", months-1).
		Group("month").
		Order("month asc").
		Scan(&rows).Error
	if err != nil {
		return []repo.MonthlyOrderStat{}, err
	}
	return rows, nil
}
