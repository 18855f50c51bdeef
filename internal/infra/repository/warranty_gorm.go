package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type WarrantyGormRepository struct {
	db *gorm.DB
}

func NewWarrantyGormRepository(db *gorm.DB) *WarrantyGormRepository {
	return &WarrantyGormRepository{db: db}
}

func (r *WarrantyGormRepository) FindByID(ctx context.Context, id int64) (model.Warranty, error) {
	var w model.Warranty
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Warranty{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Warranty{}, err
	}
	return w, nil
}

func (r *WarrantyGormRepository) FindByReference(ctx context.Context, reference string) (model.Warranty, error) {
	var w model.Warranty
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Warranty{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Warranty{}, err
	}
	return w, nil
}

func (r *WarrantyGormRepository) ListByOrderID(ctx context.Context, orderID int64) ([]model.Warranty, error) {
	var items []model.Warranty
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.Warranty{}, err
	}
	return items, nil
}

func (r *WarrantyGormRepository) ListByEmail(ctx context.Context, email string) ([]model.Warranty, error) {
	var items []model.Warranty
	err := r.db.WithContext(ctx).
		Where("customer_email = ?", email).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Warranty{}, err
	}
	return items, nil
}

func (r *WarrantyGormRepository) CreateBulk(ctx context.Context, warranties []model.Warranty) error {
	if len(warranties) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&warranties).Error
}

func (r *WarrantyGormRepository) UpdateStatus(ctx context.Context, warrantyID int64, status model.WarrantyStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Warranty{}).
		Where("id = ?", warrantyID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// end_date超過のACTIVEをEXPIREDへ
func (r *WarrantyGormRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Warranty{}).
		Where("status = ? AND end_date < ?", model.WarrantyStatusActive, now).
		Update("status", model.WarrantyStatusExpired)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

type WarrantyClaimGormRepository struct {
	db *gorm.DB
}

func NewWarrantyClaimGormRepository(db *gorm.DB) *WarrantyClaimGormRepository {
	return &WarrantyClaimGormRepository{db: db}
}

func (r *WarrantyClaimGormRepository) FindByID(ctx context.Context, id int64) (model.WarrantyClaim, error) {
	var c model.WarrantyClaim
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.WarrantyClaim{}, repo.ErrNotFound
	}
	if err != nil {
		return model.WarrantyClaim{}, err
	}
	return c, nil
}

func (r *WarrantyClaimGormRepository) ListByWarrantyID(ctx context.Context, warrantyID int64) ([]model.WarrantyClaim, error) {
	var items []model.WarrantyClaim
	err := r.db.WithContext(ctx).
		Where("warranty_id = ?", warrantyID).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.WarrantyClaim{}, err
	}
	return items, nil
}

func (r *WarrantyClaimGormRepository) ListAdmin(ctx context.Context, status string, page int, limit int) ([]model.WarrantyClaim, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.WarrantyClaim{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.WarrantyClaim{}, 0, err
	}

	var items []model.WarrantyClaim
	offset := (page - 1) * limit
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.WarrantyClaim{}, 0, err
	}
	return items, total, nil
}

func (r *WarrantyClaimGormRepository) Create(ctx context.Context, c model.WarrantyClaim) (model.WarrantyClaim, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.WarrantyClaim{}, err
	}
	return c, nil
}

func (r *WarrantyClaimGormRepository) UpdateStatus(ctx context.Context, claimID int64, status model.WarrantyClaimStatus, adminNote string, resolvedAt *time.Time) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if adminNote != "" {
		updates["admin_note"] = adminNote
	}
	if resolvedAt != nil {
		updates["resolved_at"] = *resolvedAt
	}

	res := r.db.WithContext(ctx).Model(&model.WarrantyClaim{}).
		Where("id = ?", claimID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *WarrantyClaimGormRepository) CountByStatus(ctx context.Context, status model.WarrantyClaimStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WarrantyClaim{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
