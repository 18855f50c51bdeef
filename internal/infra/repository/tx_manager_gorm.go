package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
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

func (r *txReposGorm) Orders() repo.OrderRepository             { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository     { return r.orderItems }
func (r *txReposGorm) Carts() repo.CartRepository               { return r.carts }
func (r *txReposGorm) CartItems() repo.CartItemRepository       { return r.cartItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository      { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository         { return r.products }
func (r *txReposGorm) Invoices() repo.InvoiceRepository         { return r.invoices }
func (r *txReposGorm) Quotes() repo.QuoteRepository             { return r.quotes }
func (r *txReposGorm) QuoteItems() repo.QuoteItemRepository     { return r.quoteItems }
func (r *txReposGorm) Installments() repo.InstallmentRepository { return r.installments }
func (r *txReposGorm) Warranties() repo.WarrantyRepository      { return r.warranties }
func (r *txReposGorm) WarrantyClaims() repo.WarrantyClaimRepository {
	return r.claims
}
func (r *txReposGorm) Payments() repo.PaymentRepository { return r.payments }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:       NewOrderGormRepository(tx),
			orderItems:   NewOrderItemGormRepository(tx),
			carts:        NewCartGormRepository(tx),
			cartItems:    NewCartItemGormRepository(tx),
			inventory:    NewInventoryGormRepository(tx),
			products:     NewProductGormRepository(tx),
			invoices:     NewInvoiceGormRepository(tx),
			quotes:       NewQuoteGormRepository(tx),
			quoteItems:   NewQuoteItemGormRepository(tx),
			installments: NewInstallmentGormRepository(tx),
			warranties:   NewWarrantyGormRepository(tx),
			claims:       NewWarrantyClaimGormRepository(tx),
			payments:     NewPaymentGormRepository(tx),
		}
		return fn(r)
	})
}
