package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type SolarSystemGormRepository struct {
	db *gorm.DB
}

func NewSolarSystemGormRepository(db *gorm.DB) *SolarSystemGormRepository {
	return &SolarSystemGormRepository{db: db}
}

func (r *SolarSystemGormRepository) ListPublic(ctx context.Context, q repo.SolarSystemListQuery) ([]model.SolarSystem, int64, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}

	base := r.db.WithContext(ctx).Model(&model.SolarSystem{}).Where("is_active = ?", true)

	if q.Q != "" {
		like := "%" + q.Q + "%"
		base = base.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.MinPrice != nil {
		base = base.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		base = base.Where("price <= ?", *q.MaxPrice)
	}
	if q.MinWatts != nil {
		base = base.Where("total_capacity_w >= ?", *q.MinWatts)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return []model.SolarSystem{}, 0, err
	}

	order := "id desc"
	switch q.Sort {
	case "price_asc":
		order = "price asc"
	case "price_desc":
		order = "price desc"
	case "capacity":
		order = "total_capacity_w desc"
	}

	var items []model.SolarSystem
	offset := (q.Page - 1) * q.Limit
	if err := base.Order(order).Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.SolarSystem{}, 0, err
	}
	return items, total, nil
}

func (r *SolarSystemGormRepository) FindByID(ctx context.Context, id int64) (model.SolarSystem, error) {
	var s model.SolarSystem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.SolarSystem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.SolarSystem{}, err
	}
	return s, nil
}

func (r *SolarSystemGormRepository) Create(ctx context.Context, s model.SolarSystem) (model.SolarSystem, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return model.SolarSystem{}, err
	}
	return s, nil
}

func (r *SolarSystemGormRepository) Update(ctx context.Context, s model.SolarSystem) error {
	res := r.db.WithContext(ctx).Model(&model.SolarSystem{}).
		Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"name":               s.Name,
			"description":        s.Description,
			"total_capacity_w":   s.TotalCapacityW,
			"components_summary": s.ComponentsSummary,
			"price":              s.Price,
			"is_active":          s.IsActive,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *SolarSystemGormRepository) SoftDelete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.SolarSystem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
