package repository

import "context"

// 月次の注文数と売上
type MonthlyOrderStat struct {
	Month   string `json:"month"` // "2026-08"
	Count   int64  `json:"count"`
	Revenue int64  `json:"revenue"`
}

// ダッシュボード用の集計クエリだけを約束。
type DashboardRepository interface {
	CountOrdersByStatus(ctx context.Context) (map[string]int64, error)
	TotalPaidRevenue(ctx context.Context) (int64, error)
	MonthlyOrderStats(ctx context.Context, months int) ([]MonthlyOrderStat, error)
}
