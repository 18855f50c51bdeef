package repository

import (
	"app/internal/domain/model"
	"context"
	"time"
)

type WarrantyRepository interface {
	FindByID(ctx context.Context, id int64) (model.Warranty, error)
	FindByReference(ctx context.Context, reference string) (model.Warranty, error)
	ListByOrderID(ctx context.Context, orderID int64) ([]model.Warranty, error)
	ListByEmail(ctx context.Context, email string) ([]model.Warranty, error)
	CreateBulk(ctx context.Context, warranties []model.Warranty) error
	UpdateStatus(ctx context.Context, warrantyID int64, status model.WarrantyStatus) error

	// end_dateを過ぎたACTIVEをEXPIREDへ（手動起動のスイープ）
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

type WarrantyClaimRepository interface {
	FindByID(ctx context.Context, id int64) (model.WarrantyClaim, error)
	ListByWarrantyID(ctx context.Context, warrantyID int64) ([]model.WarrantyClaim, error)
	ListAdmin(ctx context.Context, status string, page int, limit int) ([]model.WarrantyClaim, int64, error)
	Create(ctx context.Context, c model.WarrantyClaim) (model.WarrantyClaim, error)
	UpdateStatus(ctx context.Context, claimID int64, status model.WarrantyClaimStatus, adminNote string, resolvedAt *time.Time) error
	CountByStatus(ctx context.Context, status model.WarrantyClaimStatus) (int64, error)
}
