package repository

import (
	"app/internal/domain/model"
	"context"
)

type AdminQuoteListFilter struct {
	Page   int
	Limit  int
	Status string
	Email  string
}

type QuoteRepository interface {
	FindByID(ctx context.Context, id int64) (model.Quote, error)
	FindByReference(ctx context.Context, reference string) (model.Quote, error)
	Create(ctx context.Context, q model.Quote) (model.Quote, error)
	Update(ctx context.Context, q model.Quote) error
	UpdateStatus(ctx context.Context, quoteID int64, status model.QuoteStatus) error
	SetOrderID(ctx context.Context, quoteID int64, orderID int64) error
	ListAdmin(ctx context.Context, f AdminQuoteListFilter) ([]model.Quote, int64, error)
	CountByStatus(ctx context.Context, status model.QuoteStatus) (int64, error)
}

type QuoteItemRepository interface {
	ListByQuoteID(ctx context.Context, quoteID int64) ([]model.QuoteItem, error)
	ReplaceForQuote(ctx context.Context, quoteID int64, items []model.QuoteItem) error
}
