package repository

import (
	"app/internal/domain/model"
	"context"
	"time"
)

type InvoiceRepository interface {
	FindByOrderID(ctx context.Context, orderID int64) (model.Invoice, error)
	FindByNumber(ctx context.Context, number string) (model.Invoice, error)
	Create(ctx context.Context, inv model.Invoice) (model.Invoice, error)
	MarkPaid(ctx context.Context, invoiceID int64, paidAt time.Time) error
}
