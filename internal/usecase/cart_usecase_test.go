package usecase

import (
	"context"
	"net/http"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newCartTestRig() (*cartRepoMock, *cartItemRepoMock, *productRepoMock, *CartUsecase) {
	carts := new(cartRepoMock)
	cartItems := new(cartItemRepoMock)
	products := new(productRepoMock)
	return carts, cartItems, products, NewCartUsecase(carts, cartItems, products)
}

func userOwner(id int64) repo.CartOwner {
	return repo.CartOwner{UserID: &id}
}

func TestCartUsecase_AddToCart_QuantityBounds(t *testing.T) {
	ctx := context.Background()
	carts, _, _, uc := newCartTestRig()

	_, err := uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 0})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	_, err = uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 11})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	carts.AssertNotCalled(t, "GetOrCreateActiveByOwner", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_MergeRespectsLimit(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, products, uc := newCartTestRig()

	carts.On("GetOrCreateActiveByOwner", mock.Anything, mock.Anything).Return(model.Cart{ID: 3}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "450W panel", Price: 10000, Stock: 100, IsActive: true,
	}, nil)
	//既に8個入っている
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 10, Quantity: 8, UnitPriceSnapshot: 10000},
	}, nil)

	//加算後11個は上限超え
	_, err := uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 3})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	cartItems.AssertNotCalled(t, "UpsertByCartAndProduct",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_StockExceeded(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, products, uc := newCartTestRig()

	carts.On("GetOrCreateActiveByOwner", mock.Anything, mock.Anything).Return(model.Cart{ID: 3}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Price: 10000, Stock: 2, IsActive: true,
	}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	_, err := uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 3})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	cartItems.AssertNotCalled(t, "UpsertByCartAndProduct",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, products, uc := newCartTestRig()

	carts.On("GetOrCreateActiveByOwner", mock.Anything, mock.Anything).Return(model.Cart{ID: 3}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Price: 10000, Stock: 100, IsActive: false,
	}, nil)

	_, err := uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 1})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	cartItems.AssertNotCalled(t, "UpsertByCartAndProduct",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_SnapshotsPriceAtAddTime(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, products, uc := newCartTestRig()

	carts.On("GetOrCreateActiveByOwner", mock.Anything, mock.Anything).Return(model.Cart{ID: 3}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "450W panel", Price: 12000, Stock: 100, IsActive: true,
	}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil).Once()
	//unit_price_snapshotは追加時点の価格
	cartItems.On("UpsertByCartAndProduct", mock.Anything, int64(3), int64(10), int64(2), int64(12000)).Return(nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 10, Quantity: 2, UnitPriceSnapshot: 12000},
	}, nil)

	out, err := uc.AddToCart(ctx, userOwner(1), AddCartInput{ProductID: 10, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(24000), out.Total)

	cartItems.AssertExpectations(t)
}

func TestCartUsecase_UpdateCartItem_OwnershipIsHiddenAs404(t *testing.T) {
	ctx := context.Background()
	_, cartItems, _, uc := newCartTestRig()

	cartItems.On("IsOwnedBy", mock.Anything, int64(9), mock.Anything).Return(false, nil)

	_, err := uc.UpdateCartItem(ctx, userOwner(1), 9, UpdateCartItemInput{Quantity: 2})
	assertHTTPStatus(t, err, http.StatusNotFound)

	cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_UpdateCartItem_StockExceeded(t *testing.T) {
	ctx := context.Background()
	_, cartItems, products, uc := newCartTestRig()

	cartItems.On("IsOwnedBy", mock.Anything, int64(9), mock.Anything).Return(true, nil)
	cartItems.On("FindByID", mock.Anything, int64(9)).Return(model.CartItem{
		ID: 9, CartID: 3, ProductID: 10, Quantity: 1,
	}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Stock: 4, IsActive: true,
	}, nil)

	_, err := uc.UpdateCartItem(ctx, userOwner(1), 9, UpdateCartItemInput{Quantity: 5})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	cartItems.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_DeleteCartItem_OwnershipIsHiddenAs404(t *testing.T) {
	ctx := context.Background()
	_, cartItems, _, uc := newCartTestRig()

	cartItems.On("IsOwnedBy", mock.Anything, int64(9), mock.Anything).Return(false, nil)

	_, err := uc.DeleteCartItem(ctx, userOwner(1), 9)
	assertHTTPStatus(t, err, http.StatusNotFound)

	cartItems.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestCartUsecase_GetCart_SkipsInactiveProducts(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, products, uc := newCartTestRig()

	carts.On("GetOrCreateActiveByOwner", mock.Anything, mock.Anything).Return(model.Cart{ID: 3}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 10, Quantity: 2, UnitPriceSnapshot: 10000},
		{ID: 2, CartID: 3, ProductID: 11, Quantity: 1, UnitPriceSnapshot: 50000},
	}, nil)
	products.On("FindByID", mock.Anything, int64(10)).Return(model.Product{
		ID: 10, Name: "450W panel", IsActive: true,
	}, nil)
	//販売停止した商品は一覧にも合計にも出さない
	products.On("FindByID", mock.Anything, int64(11)).Return(model.Product{
		ID: 11, Name: "old inverter", IsActive: false,
	}, nil)

	out, err := uc.GetCart(ctx, userOwner(1))
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(20000), out.Total)
}

func TestCartUsecase_GuestOwnerBySessionToken(t *testing.T) {
	ctx := context.Background()
	carts, cartItems, _, uc := newCartTestRig()

	owner := repo.CartOwner{SessionToken: "sess-abc"}

	carts.On("GetOrCreateActiveByOwner", mock.Anything, owner).Return(model.Cart{ID: 4}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(4)).Return([]model.CartItem{}, nil)

	out, err := uc.GetCart(ctx, owner)
	assert.NoError(t, err)
	assert.Empty(t, out.Items)

	//持ち主情報が無ければ401
	_, err = uc.GetCart(ctx, repo.CartOwner{})
	assertHTTPStatus(t, err, http.StatusUnauthorized)
}
