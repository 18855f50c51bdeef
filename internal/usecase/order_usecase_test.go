package usecase

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newOrderTestRig() (*txManagerMock, *txReposStub, *mailerMock, *OrderUsecase) {
	tx := new(txManagerMock)
	repos := &txReposStub{
		orders:     new(orderRepoMock),
		orderItems: new(orderItemRepoMock),
		carts:      new(cartRepoMock),
		cartItems:  new(cartItemRepoMock),
		inventory:  new(inventoryRepoMock),
		products:   new(productRepoMock),
	}
	tx.Repos = repos

	mailer := new(mailerMock)
	uc := NewOrderUsecase(tx, NewOrderNotifier(mailer, zap.NewNop()))
	return tx, repos, mailer, uc
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	if assert.Error(t, err) && assert.True(t, ok, "want HTTPError, got %v", err) {
		assert.Equal(t, status, he.Status)
	}
}

func TestOrderUsecase_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	tx, repos, mailer, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	orderItems := repos.orderItems.(*orderItemRepoMock)
	carts := repos.carts.(*cartRepoMock)
	cartItems := repos.cartItems.(*cartItemRepoMock)
	inventory := repos.inventory.(*inventoryRepoMock)
	products := repos.products.(*productRepoMock)

	userID := int64(7)
	owner := repo.CartOwner{UserID: &userID}

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByIdempotencyKey", mock.Anything, "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByOwner", mock.Anything, owner).Return(model.Cart{ID: 3}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 21, Quantity: 2, UnitPriceSnapshot: 10000},
	}, nil)
	products.On("FindByID", mock.Anything, int64(21)).Return(model.Product{
		ID: 21, Name: "450W panel", IsActive: true, WarrantyMonths: 12,
	}, nil)
	inventory.On("DecreaseStockIfEnough", mock.Anything, int64(21), int64(2)).Return(true, nil)
	orders.On("Create", mock.Anything, mock.Anything).Return(int64(99), nil)
	orderItems.On("CreateBulk", mock.Anything, int64(99), mock.Anything).Return(nil)
	carts.On("UpdateStatus", mock.Anything, int64(3), model.CartStatusCheckedOut).Return(nil)
	carts.On("Clear", mock.Anything, int64(3)).Return(nil)
	mailer.On("Send", "a@example.com", mock.Anything, mock.Anything).Return(nil)

	out, err := uc.PlaceOrder(ctx, owner, PlaceOrderInput{
		IdempotencyKey: "key-1",
		CustomerName:   "Ada",
		CustomerEmail:  "a@example.com",
		InstallAddress: "1 Solar Way",
		InstallCity:    "Lagos",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(99), out.ID)
	assert.True(t, strings.HasPrefix(out.Reference, "ORD-"))
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, string(model.PaymentStatusUnpaid), out.PaymentStatus)
	assert.Equal(t, int64(20000), out.TotalAmount)
	assert.Len(t, out.Items, 1)

	orders.AssertExpectations(t)
	carts.AssertExpectations(t)
	inventory.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestOrderUsecase_PlaceOrder_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	tx, repos, mailer, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	orderItems := repos.orderItems.(*orderItemRepoMock)
	carts := repos.carts.(*cartRepoMock)

	userID := int64(7)
	owner := repo.CartOwner{UserID: &userID}

	existing := model.Order{ID: 42, Reference: "ORD-existing", Status: model.OrderStatusPending}

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByIdempotencyKey", mock.Anything, "key-1").Return(existing, true, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(42)).Return([]model.OrderItem{}, nil)

	out, err := uc.PlaceOrder(ctx, owner, PlaceOrderInput{
		IdempotencyKey: "key-1",
		CustomerName:   "Ada",
		CustomerEmail:  "a@example.com",
		InstallAddress: "1 Solar Way",
		InstallCity:    "Lagos",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.ID)

	//カートには触らず、メールも再送しない
	carts.AssertNotCalled(t, "FindActiveByOwner", mock.Anything, mock.Anything)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	ctx := context.Background()
	tx, repos, _, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	carts := repos.carts.(*cartRepoMock)
	cartItems := repos.cartItems.(*cartItemRepoMock)
	inventory := repos.inventory.(*inventoryRepoMock)
	products := repos.products.(*productRepoMock)

	userID := int64(7)
	owner := repo.CartOwner{UserID: &userID}

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByIdempotencyKey", mock.Anything, "key-1").Return(model.Order{}, false, nil)
	carts.On("FindActiveByOwner", mock.Anything, owner).Return(model.Cart{ID: 3}, nil)
	cartItems.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 1, CartID: 3, ProductID: 21, Quantity: 5, UnitPriceSnapshot: 10000},
	}, nil)
	products.On("FindByID", mock.Anything, int64(21)).Return(model.Product{ID: 21, IsActive: true}, nil)
	inventory.On("DecreaseStockIfEnough", mock.Anything, int64(21), int64(5)).Return(false, nil)

	_, err := uc.PlaceOrder(ctx, owner, PlaceOrderInput{
		IdempotencyKey: "key-1",
		CustomerName:   "Ada",
		CustomerEmail:  "a@example.com",
		InstallAddress: "1 Solar Way",
		InstallCity:    "Lagos",
	})
	assertHTTPStatus(t, err, http.StatusBadRequest)

	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderUsecase_CancelOrder_PendingRestocksAndReturns(t *testing.T) {
	ctx := context.Background()
	tx, repos, mailer, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	orderItems := repos.orderItems.(*orderItemRepoMock)
	inventory := repos.inventory.(*inventoryRepoMock)

	userID := int64(7)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, UserID: &userID, Status: model.OrderStatusPending, CustomerEmail: "a@example.com",
	}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{ID: 1, ProductID: 21, Quantity: 2},
		{ID: 2, ProductID: 22, Quantity: 1},
	}, nil)
	inventory.On("IncreaseStock", mock.Anything, int64(21), int64(2)).Return(nil)
	inventory.On("IncreaseStock", mock.Anything, int64(22), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusReturned).Return(nil)
	mailer.On("Send", "a@example.com", mock.Anything, mock.Anything).Return(nil)

	err := uc.CancelOrder(ctx, userID, 5)
	assert.NoError(t, err)

	orders.AssertExpectations(t)
	inventory.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestOrderUsecase_CancelOrder_InstalledIsTerminal(t *testing.T) {
	ctx := context.Background()
	tx, repos, _, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	inventory := repos.inventory.(*inventoryRepoMock)

	userID := int64(7)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, UserID: &userID, Status: model.OrderStatusInstalled,
	}, nil)

	err := uc.CancelOrder(ctx, userID, 5)
	assert.ErrorIs(t, err, model.ErrOrderNotCancellable)

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	inventory.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderUsecase_CancelOrder_OtherUsersOrderIsHidden(t *testing.T) {
	ctx := context.Background()
	tx, repos, _, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)

	otherID := int64(99)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, UserID: &otherID, Status: model.OrderStatusPending,
	}, nil)

	err := uc.CancelOrder(ctx, 7, 5)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestOrderUsecase_GetGuestOrder_EmailMustMatch(t *testing.T) {
	ctx := context.Background()
	tx, repos, _, uc := newOrderTestRig()

	orders := repos.orders.(*orderRepoMock)
	orderItems := repos.orderItems.(*orderItemRepoMock)

	tx.On("WithinTx", mock.Anything).Return(nil)
	orders.On("FindByReference", mock.Anything, "ORD-abc").Return(model.Order{
		ID: 5, Reference: "ORD-abc", CustomerEmail: "a@example.com",
	}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{}, nil)

	//大文字小文字は同一視
	out, err := uc.GetGuestOrder(ctx, "ORD-abc", "A@Example.COM")
	assert.NoError(t, err)
	assert.Equal(t, "ORD-abc", out.Reference)

	//不一致は404
	_, err = uc.GetGuestOrder(ctx, "ORD-abc", "someone@else.com")
	assertHTTPStatus(t, err, http.StatusNotFound)
}
