package repository

import (
	"app/internal/domain/model"
	"context"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (model.Setting, error)
	List(ctx context.Context) ([]model.Setting, error)
	Upsert(ctx context.Context, key string, value string) error
}
