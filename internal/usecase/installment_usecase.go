package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// InstallmentUsecase は分割払いプランの作成・照会・延滞スイープ。
type InstallmentUsecase struct {
	tx repo.TransactionManager
}

func NewInstallmentUsecase(tx repo.TransactionManager) *InstallmentUsecase {
	return &InstallmentUsecase{tx: tx}
}

const (
	installmentCountMin = 2
	installmentCountMax = 24
)

type CreatePlanInput struct {
	DownPayment      int64
	InstallmentCount int
}

type InstallmentPlanOutput struct {
	Plan     model.InstallmentPlan      `json:"plan"`
	Payments []model.InstallmentPayment `json:"payments"`
}

// CreatePlan は注文に分割払いプランを張る。
// 残額（合計−頭金）を月額N回に割り、端数は最終回に寄せる。
func (u *InstallmentUsecase) CreatePlan(ctx context.Context, adminID int64, orderID int64, in CreatePlanInput) (InstallmentPlanOutput, error) {
	if adminID <= 0 {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.InstallmentCount < installmentCountMin || in.InstallmentCount > installmentCountMax {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusBadRequest, "invalid installment_count")
	}
	if in.DownPayment < 0 {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusBadRequest, "invalid down_payment")
	}

	var out InstallmentPlanOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.IsPaid() {
			return model.ErrOrderAlreadyPaid
		}
		if in.DownPayment >= o.TotalAmount {
			return NewHTTPError(http.StatusBadRequest, "down_payment exceeds total")
		}

		//既存プランがあれば409
		_, err = r.Installments().FindPlanByOrderID(ctx, orderID)
		if err == nil {
			return NewHTTPError(http.StatusConflict, "plan already exists")
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		remaining := o.TotalAmount - in.DownPayment
		count := int64(in.InstallmentCount)
		amount := remaining / count

		plan, err := r.Installments().CreatePlan(ctx, model.InstallmentPlan{
			OrderID:           orderID,
			DownPayment:       in.DownPayment,
			InstallmentCount:  in.InstallmentCount,
			InstallmentAmount: amount,
			Status:            model.InstallmentPlanStatusActive,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//毎月の支払予定。端数は最終回に寄せる。
		now := time.Now()
		payments := make([]model.InstallmentPayment, 0, in.InstallmentCount)
		var scheduled int64 = 0
		for i := 1; i <= in.InstallmentCount; i++ {
			a := amount
			if i == in.InstallmentCount {
				a = remaining - scheduled
			}
			scheduled += a

			payments = append(payments, model.InstallmentPayment{
				PlanID:    plan.ID,
				Reference: "INST-" + uuid.NewString(),
				Sequence:  i,
				Amount:    a,
				DueDate:   now.AddDate(0, i, 0),
				Status:    model.InstallmentPaymentStatusPending,
			})
		}
		if err := r.Installments().CreatePaymentsBulk(ctx, payments); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = InstallmentPlanOutput{Plan: plan, Payments: payments}
		return nil
	})
	if err != nil {
		return InstallmentPlanOutput{}, err
	}
	return out, nil
}

// GetPlanForOrder は管理者向けのプラン照会。
func (u *InstallmentUsecase) GetPlanForOrder(ctx context.Context, adminID int64, orderID int64) (InstallmentPlanOutput, error) {
	if adminID <= 0 {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return u.planByOrderID(ctx, orderID)
}

// GetPlanForCustomer は顧客向け。注文参照番号＋メール一致で照会する。
func (u *InstallmentUsecase) GetPlanForCustomer(ctx context.Context, orderReference string, email string) (InstallmentPlanOutput, error) {
	orderReference = strings.TrimSpace(orderReference)
	email = strings.TrimSpace(email)
	if orderReference == "" || email == "" {
		return InstallmentPlanOutput{}, NewHTTPError(http.StatusBadRequest, "reference and email required")
	}

	var out InstallmentPlanOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByReference(ctx, orderReference)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !strings.EqualFold(o.CustomerEmail, email) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		plan, err := r.Installments().FindPlanByOrderID(ctx, o.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		payments, err := r.Installments().ListPaymentsByPlanID(ctx, plan.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = InstallmentPlanOutput{Plan: plan, Payments: payments}
		return nil
	})
	if err != nil {
		return InstallmentPlanOutput{}, err
	}
	return out, nil
}

func (u *InstallmentUsecase) planByOrderID(ctx context.Context, orderID int64) (InstallmentPlanOutput, error) {
	var out InstallmentPlanOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		plan, err := r.Installments().FindPlanByOrderID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		payments, err := r.Installments().ListPaymentsByPlanID(ctx, plan.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = InstallmentPlanOutput{Plan: plan, Payments: payments}
		return nil
	})
	if err != nil {
		return InstallmentPlanOutput{}, err
	}
	return out, nil
}

// OverdueSweep は期日超過のPENDINGをOVERDUEへ倒す（管理者の手動起動）。
func (u *InstallmentUsecase) OverdueSweep(ctx context.Context, adminID int64) (int64, error) {
	if adminID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var n int64
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		marked, err := r.Installments().MarkOverdue(ctx, time.Now())
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		n = marked
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
