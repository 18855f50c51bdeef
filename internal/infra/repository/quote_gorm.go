package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type QuoteGormRepository struct {
	db *gorm.DB
}

func NewQuoteGormRepository(db *gorm.DB) *QuoteGormRepository {
	return &QuoteGormRepository{db: db}
}

func (r *QuoteGormRepository) FindByID(ctx context.Context, id int64) (model.Quote, error) {
	var q model.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Quote{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

func (r *QuoteGormRepository) FindByReference(ctx context.Context, reference string) (model.Quote, error) {
	var q model.Quote
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Quote{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

func (r *QuoteGormRepository) Create(ctx context.Context, q model.Quote) (model.Quote, error) {
	if err := r.db.WithContext(ctx).Create(&q).Error; err != nil {
		return model.Quote{}, err
	}
	return q, nil
}

func (r *QuoteGormRepository) Update(ctx context.Context, q model.Quote) error {
	res := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("id = ?", q.ID).
		Updates(map[string]interface{}{
			"customer_name":  q.CustomerName,
			"customer_email": q.CustomerEmail,
			"customer_phone": q.CustomerPhone,
			"subtotal":       q.Subtotal,
			"discount":       q.Discount,
			"total":          q.Total,
			"valid_until":    q.ValidUntil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *QuoteGormRepository) UpdateStatus(ctx context.Context, quoteID int64, status model.QuoteStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("id = ?", quoteID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *QuoteGormRepository) SetOrderID(ctx context.Context, quoteID int64, orderID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("id = ?", quoteID).
		Update("order_id", orderID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *QuoteGormRepository) ListAdmin(ctx context.Context, f repo.AdminQuoteListFilter) ([]model.Quote, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Quote{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Email != "" {
		q = q.Where("customer_email = ?", f.Email)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Quote{}, 0, err
	}

	var items []model.Quote
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("id desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Quote{}, 0, err
	}
	return items, total, nil
}

func (r *QuoteGormRepository) CountByStatus(ctx context.Context, status model.QuoteStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

type QuoteItemGormRepository struct {
	db *gorm.DB
}

func NewQuoteItemGormRepository(db *gorm.DB) *QuoteItemGormRepository {
	return &QuoteItemGormRepository{db: db}
}

func (r *QuoteItemGormRepository) ListByQuoteID(ctx context.Context, quoteID int64) ([]model.QuoteItem, error) {
	var items []model.QuoteItem
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.QuoteItem{}, err
	}
	return items, nil
}

// 明細を丸ごと入れ替える（編集は差分管理しない）
func (r *QuoteItemGormRepository) ReplaceForQuote(ctx context.Context, quoteID int64, items []model.QuoteItem) error {
	if err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuoteID = quoteID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
