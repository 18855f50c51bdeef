package repository

import (
	"app/internal/domain/model"
	"context"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	UpdateLastLoginAt(ctx context.Context, id int64) error

	// 強制ログアウト用（既発行JWTを全部無効化）
	IncrementTokenVersion(ctx context.Context, id int64) error
}
