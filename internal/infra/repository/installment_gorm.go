package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type InstallmentGormRepository struct {
	db *gorm.DB
}

func NewInstallmentGormRepository(db *gorm.DB) *InstallmentGormRepository {
	return &InstallmentGormRepository{db: db}
}

func (r *InstallmentGormRepository) FindPlanByID(ctx context.Context, planID int64) (model.InstallmentPlan, error) {
	var p model.InstallmentPlan
	err := r.db.WithContext(ctx).Where("id = ?", planID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InstallmentPlan{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InstallmentPlan{}, err
	}
	return p, nil
}

func (r *InstallmentGormRepository) FindPlanByOrderID(ctx context.Context, orderID int64) (model.InstallmentPlan, error) {
	var p model.InstallmentPlan
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InstallmentPlan{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InstallmentPlan{}, err
	}
	return p, nil
}

func (r *InstallmentGormRepository) CreatePlan(ctx context.Context, plan model.InstallmentPlan) (model.InstallmentPlan, error) {
	if err := r.db.WithContext(ctx).Create(&plan).Error; err != nil {
		return model.InstallmentPlan{}, err
	}
	return plan, nil
}

func (r *InstallmentGormRepository) UpdatePlanStatus(ctx context.Context, planID int64, status model.InstallmentPlanStatus) error {
	res := r.db.WithContext(ctx).Model(&model.InstallmentPlan{}).
		Where("id = ?", planID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InstallmentGormRepository) ListPaymentsByPlanID(ctx context.Context, planID int64) ([]model.InstallmentPayment, error) {
	var items []model.InstallmentPayment
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("sequence asc").
		Find(&items).Error
	if err != nil {
		return []model.InstallmentPayment{}, err
	}
	return items, nil
}

func (r *InstallmentGormRepository) FindPaymentByReference(ctx context.Context, reference string) (model.InstallmentPayment, error) {
	var p model.InstallmentPayment
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InstallmentPayment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InstallmentPayment{}, err
	}
	return p, nil
}

func (r *InstallmentGormRepository) CreatePaymentsBulk(ctx context.Context, payments []model.InstallmentPayment) error {
	if len(payments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&payments).Error
}

func (r *InstallmentGormRepository) MarkPaymentPaid(ctx context.Context, paymentID int64, paidAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.InstallmentPayment{}).
		Where("id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":  model.InstallmentPaymentStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 期日超過のPENDINGをOVERDUEへ
func (r *InstallmentGormRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.InstallmentPayment{}).
		Where("status = ? AND due_date < ?", model.InstallmentPaymentStatusPending, now).
		Update("status", model.InstallmentPaymentStatusOverdue)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
