package repository

import (
	"app/internal/domain/model"
	"context"
)

type PaymentRepository interface {
	Create(ctx context.Context, p model.Payment) (model.Payment, error)
	FindByReference(ctx context.Context, reference string) (model.Payment, bool, error)
	ListByTargetReference(ctx context.Context, targetRef string) ([]model.Payment, error)
}
