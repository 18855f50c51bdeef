package usecase

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos
// =====================

// txManagerMock は WithinTx に渡す repos を固定して unit テストを回す。
type txManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *txManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	//呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type txReposStub struct {
	orders       repo.OrderRepository
	orderItems   repo.OrderItemRepository
	carts        repo.CartRepository
	cartItems    repo.CartItemRepository
	inventory    repo.InventoryRepository
	products     repo.ProductRepository
	invoices     repo.InvoiceRepository
	quotes       repo.QuoteRepository
	quoteItems   repo.QuoteItemRepository
	installments repo.InstallmentRepository
	warranties   repo.WarrantyRepository
	claims       repo.WarrantyClaimRepository
	payments     repo.PaymentRepository
}

func (r *txReposStub) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposStub) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *txReposStub) Carts() repo.CartRepository             { return r.carts }
func (r *txReposStub) CartItems() repo.CartItemRepository     { return r.cartItems }
func (r *txReposStub) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *txReposStub) Products() repo.ProductRepository       { return r.products }
func (r *txReposStub) Invoices() repo.InvoiceRepository       { return r.invoices }
func (r *txReposStub) Quotes() repo.QuoteRepository           { return r.quotes }
func (r *txReposStub) QuoteItems() repo.QuoteItemRepository   { return r.quoteItems }
func (r *txReposStub) Installments() repo.InstallmentRepository {
	return r.installments
}
func (r *txReposStub) Warranties() repo.WarrantyRepository { return r.warranties }
func (r *txReposStub) WarrantyClaims() repo.WarrantyClaimRepository {
	return r.claims
}
func (r *txReposStub) Payments() repo.PaymentRepository { return r.payments }

// =====================
// Repository mocks
// =====================

type orderRepoMock struct{ mock.Mock }

func (m *orderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) FindByReference(ctx context.Context, reference string) (model.Order, error) {
	args := m.Called(ctx, reference)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *orderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *orderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *orderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

func (m *orderRepoMock) SetScheduledAt(ctx context.Context, orderID int64, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

func (m *orderRepoMock) SetInstalledAt(ctx context.Context, orderID int64, at time.Time) error {
	args := m.Called(ctx, orderID, at)
	return args.Error(0)
}

func (m *orderRepoMock) FindByIdempotencyKey(ctx context.Context, key string) (model.Order, bool, error) {
	args := m.Called(ctx, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *orderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type orderItemRepoMock struct{ mock.Mock }

func (m *orderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *orderItemRepoMock) FindByID(ctx context.Context, id int64) (model.OrderItem, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.OrderItem)
	return it, args.Error(1)
}

func (m *orderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

type inventoryRepoMock struct{ mock.Mock }

func (m *inventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

func (m *inventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *inventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *inventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	args := m.Called(ctx, adjustment)
	return args.Error(0)
}

type cartRepoMock struct{ mock.Mock }

func (m *cartRepoMock) FindActiveByOwner(ctx context.Context, owner repo.CartOwner) (model.Cart, error) {
	args := m.Called(ctx, owner)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) GetOrCreateActiveByOwner(ctx context.Context, owner repo.CartOwner) (model.Cart, error) {
	args := m.Called(ctx, owner)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *cartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *cartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type cartItemRepoMock struct{ mock.Mock }

func (m *cartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *cartItemRepoMock) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	args := m.Called(ctx, id)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *cartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, qty int64, unitPrice int64) error {
	args := m.Called(ctx, cartID, productID, qty, unitPrice)
	return args.Error(0)
}

func (m *cartItemRepoMock) UpdateQuantity(ctx context.Context, id int64, qty int64) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *cartItemRepoMock) DeleteByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *cartItemRepoMock) IsOwnedBy(ctx context.Context, cartItemID int64, owner repo.CartOwner) (bool, error) {
	args := m.Called(ctx, cartItemID, owner)
	return args.Bool(0), args.Error(1)
}

type productRepoMock struct{ mock.Mock }

func (m *productRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) FindBySKU(ctx context.Context, sku string) (model.Product, error) {
	args := m.Called(ctx, sku)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *productRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *productRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *productRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *productRepoMock) ListLowStock(ctx context.Context, threshold int64, limit int) ([]model.Product, error) {
	args := m.Called(ctx, threshold, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type invoiceRepoMock struct{ mock.Mock }

func (m *invoiceRepoMock) FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, error) {
	args := m.Called(ctx, orderID)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *invoiceRepoMock) FindByNumber(ctx context.Context, number string) (model.Invoice, error) {
	args := m.Called(ctx, number)
	inv, _ := args.Get(0).(model.Invoice)
	return inv, args.Error(1)
}

func (m *invoiceRepoMock) Create(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	args := m.Called(ctx, inv)
	created, _ := args.Get(0).(model.Invoice)
	return created, args.Error(1)
}

func (m *invoiceRepoMock) MarkPaid(ctx context.Context, invoiceID int64, paidAt time.Time) error {
	args := m.Called(ctx, invoiceID, paidAt)
	return args.Error(0)
}

type quoteRepoMock struct{ mock.Mock }

func (m *quoteRepoMock) FindByID(ctx context.Context, id int64) (model.Quote, error) {
	args := m.Called(ctx, id)
	q, _ := args.Get(0).(model.Quote)
	return q, args.Error(1)
}

func (m *quoteRepoMock) FindByReference(ctx context.Context, reference string) (model.Quote, error) {
	args := m.Called(ctx, reference)
	q, _ := args.Get(0).(model.Quote)
	return q, args.Error(1)
}

func (m *quoteRepoMock) Create(ctx context.Context, q model.Quote) (model.Quote, error) {
	args := m.Called(ctx, q)
	created, _ := args.Get(0).(model.Quote)
	return created, args.Error(1)
}

func (m *quoteRepoMock) Update(ctx context.Context, q model.Quote) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *quoteRepoMock) UpdateStatus(ctx context.Context, quoteID int64, status model.QuoteStatus) error {
	args := m.Called(ctx, quoteID, status)
	return args.Error(0)
}

func (m *quoteRepoMock) SetOrderID(ctx context.Context, quoteID int64, orderID int64) error {
	args := m.Called(ctx, quoteID, orderID)
	return args.Error(0)
}

func (m *quoteRepoMock) ListAdmin(ctx context.Context, f repo.AdminQuoteListFilter) ([]model.Quote, int64, error) {
	args := m.Called(ctx, f)
	quotes, _ := args.Get(0).([]model.Quote)
	return quotes, args.Get(1).(int64), args.Error(2)
}

func (m *quoteRepoMock) CountByStatus(ctx context.Context, status model.QuoteStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type quoteItemRepoMock struct{ mock.Mock }

func (m *quoteItemRepoMock) ListByQuoteID(ctx context.Context, quoteID int64) ([]model.QuoteItem, error) {
	args := m.Called(ctx, quoteID)
	items, _ := args.Get(0).([]model.QuoteItem)
	return items, args.Error(1)
}

func (m *quoteItemRepoMock) ReplaceForQuote(ctx context.Context, quoteID int64, items []model.QuoteItem) error {
	args := m.Called(ctx, quoteID, items)
	return args.Error(0)
}

type installmentRepoMock struct{ mock.Mock }

func (m *installmentRepoMock) FindPlanByID(ctx context.Context, planID int64) (model.InstallmentPlan, error) {
	args := m.Called(ctx, planID)
	p, _ := args.Get(0).(model.InstallmentPlan)
	return p, args.Error(1)
}

func (m *installmentRepoMock) FindPlanByOrderID(ctx context.Context, orderID int64) (model.InstallmentPlan, error) {
	args := m.Called(ctx, orderID)
	p, _ := args.Get(0).(model.InstallmentPlan)
	return p, args.Error(1)
}

func (m *installmentRepoMock) CreatePlan(ctx context.Context, plan model.InstallmentPlan) (model.InstallmentPlan, error) {
	args := m.Called(ctx, plan)
	created, _ := args.Get(0).(model.InstallmentPlan)
	return created, args.Error(1)
}

func (m *installmentRepoMock) UpdatePlanStatus(ctx context.Context, planID int64, status model.InstallmentPlanStatus) error {
	args := m.Called(ctx, planID, status)
	return args.Error(0)
}

func (m *installmentRepoMock) ListPaymentsByPlanID(ctx context.Context, planID int64) ([]model.InstallmentPayment, error) {
	args := m.Called(ctx, planID)
	payments, _ := args.Get(0).([]model.InstallmentPayment)
	return payments, args.Error(1)
}

func (m *installmentRepoMock) FindPaymentByReference(ctx context.Context, reference string) (model.InstallmentPayment, error) {
	args := m.Called(ctx, reference)
	p, _ := args.Get(0).(model.InstallmentPayment)
	return p, args.Error(1)
}

func (m *installmentRepoMock) CreatePaymentsBulk(ctx context.Context, payments []model.InstallmentPayment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *installmentRepoMock) MarkPaymentPaid(ctx context.Context, paymentID int64, paidAt time.Time) error {
	args := m.Called(ctx, paymentID, paidAt)
	return args.Error(0)
}

func (m *installmentRepoMock) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type warrantyRepoMock struct{ mock.Mock }

func (m *warrantyRepoMock) FindByID(ctx context.Context, id int64) (model.Warranty, error) {
	args := m.Called(ctx, id)
	w, _ := args.Get(0).(model.Warranty)
	return w, args.Error(1)
}

func (m *warrantyRepoMock) FindByReference(ctx context.Context, reference string) (model.Warranty, error) {
	args := m.Called(ctx, reference)
	w, _ := args.Get(0).(model.Warranty)
	return w, args.Error(1)
}

func (m *warrantyRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.Warranty, error) {
	args := m.Called(ctx, orderID)
	ws, _ := args.Get(0).([]model.Warranty)
	return ws, args.Error(1)
}

func (m *warrantyRepoMock) ListByEmail(ctx context.Context, email string) ([]model.Warranty, error) {
	args := m.Called(ctx, email)
	ws, _ := args.Get(0).([]model.Warranty)
	return ws, args.Error(1)
}

func (m *warrantyRepoMock) CreateBulk(ctx context.Context, warranties []model.Warranty) error {
	args := m.Called(ctx, warranties)
	return args.Error(0)
}

func (m *warrantyRepoMock) UpdateStatus(ctx context.Context, warrantyID int64, status model.WarrantyStatus) error {
	args := m.Called(ctx, warrantyID, status)
	return args.Error(0)
}

func (m *warrantyRepoMock) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type claimRepoMock struct{ mock.Mock }

func (m *claimRepoMock) FindByID(ctx context.Context, id int64) (model.WarrantyClaim, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.WarrantyClaim)
	return c, args.Error(1)
}

func (m *claimRepoMock) ListByWarrantyID(ctx context.Context, warrantyID int64) ([]model.WarrantyClaim, error) {
	args := m.Called(ctx, warrantyID)
	cs, _ := args.Get(0).([]model.WarrantyClaim)
	return cs, args.Error(1)
}

func (m *claimRepoMock) ListAdmin(ctx context.Context, status string, page int, limit int) ([]model.WarrantyClaim, int64, error) {
	args := m.Called(ctx, status, page, limit)
	cs, _ := args.Get(0).([]model.WarrantyClaim)
	return cs, args.Get(1).(int64), args.Error(2)
}

func (m *claimRepoMock) Create(ctx context.Context, c model.WarrantyClaim) (model.WarrantyClaim, error) {
	args := m.Called(ctx, c)
	created, _ := args.Get(0).(model.WarrantyClaim)
	return created, args.Error(1)
}

func (m *claimRepoMock) UpdateStatus(ctx context.Context, claimID int64, status model.WarrantyClaimStatus, adminNote string, resolvedAt *time.Time) error {
	args := m.Called(ctx, claimID, status, adminNote, resolvedAt)
	return args.Error(0)
}

func (m *claimRepoMock) CountByStatus(ctx context.Context, status model.WarrantyClaimStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type paymentRepoMock struct{ mock.Mock }

func (m *paymentRepoMock) Create(ctx context.Context, p model.Payment) (model.Payment, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Payment)
	return created, args.Error(1)
}

func (m *paymentRepoMock) FindByReference(ctx context.Context, reference string) (model.Payment, bool, error) {
	args := m.Called(ctx, reference)
	p, _ := args.Get(0).(model.Payment)
	return p, args.Bool(1), args.Error(2)
}

func (m *paymentRepoMock) ListByTargetReference(ctx context.Context, targetRef string) ([]model.Payment, error) {
	args := m.Called(ctx, targetRef)
	ps, _ := args.Get(0).([]model.Payment)
	return ps, args.Error(1)
}

type settingRepoMock struct{ mock.Mock }

func (m *settingRepoMock) Get(ctx context.Context, key string) (model.Setting, error) {
	args := m.Called(ctx, key)
	s, _ := args.Get(0).(model.Setting)
	return s, args.Error(1)
}

func (m *settingRepoMock) List(ctx context.Context) ([]model.Setting, error) {
	args := m.Called(ctx)
	ss, _ := args.Get(0).([]model.Setting)
	return ss, args.Error(1)
}

func (m *settingRepoMock) Upsert(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type auditRepoMock struct{ mock.Mock }

func (m *auditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *auditRepoMock) ListByResource(ctx context.Context, resourceType model.AuditResourceType, resourceID int64, limit int) ([]model.AuditLog, error) {
	args := m.Called(ctx, resourceType, resourceID, limit)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Port mocks
// =====================

type mailerMock struct{ mock.Mock }

func (m *mailerMock) Send(to string, subject string, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

type settingCacheMock struct{ mock.Mock }

func (m *settingCacheMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *settingCacheMock) Set(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *settingCacheMock) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type webhookGuardMock struct{ mock.Mock }

func (m *webhookGuardMock) FirstDelivery(ctx context.Context, gateway string, reference string) (bool, error) {
	args := m.Called(ctx, gateway, reference)
	return args.Bool(0), args.Error(1)
}

func (m *webhookGuardMock) Release(ctx context.Context, gateway string, reference string) error {
	args := m.Called(ctx, gateway, reference)
	return args.Error(0)
}
