package repository

import (
	"app/internal/domain/model"
	"context"
)

// パッケージシステムの一覧検索
type SolarSystemListQuery struct {
	Page      int
	Limit     int
	Q         string
	MinPrice  *int64
	MaxPrice  *int64
	MinWatts  *int64
	Sort      string
}

type SolarSystemRepository interface {
	ListPublic(ctx context.Context, q SolarSystemListQuery) ([]model.SolarSystem, int64, error)
	FindByID(ctx context.Context, id int64) (model.SolarSystem, error)

	Create(ctx context.Context, s model.SolarSystem) (model.SolarSystem, error)
	Update(ctx context.Context, s model.SolarSystem) error
	SoftDelete(ctx context.Context, id int64) error
}
