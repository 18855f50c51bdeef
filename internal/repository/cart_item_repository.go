package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByID(ctx context.Context, id int64) (model.CartItem, error)

	// 同一商品なら数量加算、無ければ作成（単価は追加時点のスナップショット）
	UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, qty int64, unitPrice int64) error
	UpdateQuantity(ctx context.Context, id int64, qty int64) error
	DeleteByID(ctx context.Context, id int64) error

	// 明細がownerのカートに属しているか
	IsOwnedBy(ctx context.Context, cartItemID int64, owner CartOwner) (bool, error)
}
