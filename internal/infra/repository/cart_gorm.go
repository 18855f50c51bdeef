package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ownerの条件をクエリに足す。UserID優先、無ければsession_token。
func ownerScope(q *gorm.DB, owner repo.CartOwner) *gorm.DB {
	if owner.UserID != nil {
		return q.Where("user_id = ?", *owner.UserID)
	}
	return q.Where("user_id IS NULL AND session_token = ?", owner.SessionToken)
}

func (r *CartGormRepository) FindActiveByOwner(ctx context.Context, owner repo.CartOwner) (model.Cart, error) {
	var c model.Cart
	q := r.db.WithContext(ctx).Where("status = ?", model.CartStatusActive)
	err := ownerScope(q, owner).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

func (r *CartGormRepository) GetOrCreateActiveByOwner(ctx context.Context, owner repo.CartOwner) (model.Cart, error) {
	c, err := r.FindActiveByOwner(ctx, owner)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Cart{}, err
	}

	c = model.Cart{
		UserID:       owner.UserID,
		SessionToken: owner.SessionToken,
		Status:       model.CartStatusActive,
	}
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.Cart{}, err
	}
	return c, nil
}

func (r *CartGormRepository) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartGormRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItem{}).Error
}
