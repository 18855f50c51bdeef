package repository

import (
	"app/internal/domain/model"
	"context"
	"time"
)

type InstallmentRepository interface {
	FindPlanByID(ctx context.Context, planID int64) (model.InstallmentPlan, error)
	FindPlanByOrderID(ctx context.Context, orderID int64) (model.InstallmentPlan, error)
	CreatePlan(ctx context.Context, plan model.InstallmentPlan) (model.InstallmentPlan, error)
	UpdatePlanStatus(ctx context.Context, planID int64, status model.InstallmentPlanStatus) error

	ListPaymentsByPlanID(ctx context.Context, planID int64) ([]model.InstallmentPayment, error)
	FindPaymentByReference(ctx context.Context, reference string) (model.InstallmentPayment, error)
	CreatePaymentsBulk(ctx context.Context, payments []model.InstallmentPayment) error
	MarkPaymentPaid(ctx context.Context, paymentID int64, paidAt time.Time) error

	// 支払期日を過ぎたPENDINGをOVERDUEへ（手動起動のスイープ）
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}
