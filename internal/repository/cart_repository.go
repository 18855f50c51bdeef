package repository

import (
	"app/internal/domain/model"
	"context"
)

// カートの持ち主。ログイン済みなら UserID、ゲストなら SessionToken。
// どちらか一方だけ入る。
type CartOwner struct {
	UserID       *int64
	SessionToken string
}

type CartRepository interface {
	FindActiveByOwner(ctx context.Context, owner CartOwner) (model.Cart, error)
	GetOrCreateActiveByOwner(ctx context.Context, owner CartOwner) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error

	// 明細の全削除（チェックアウト後）
	Clear(ctx context.Context, cartID int64) error
}
