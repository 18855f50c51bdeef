package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// AdminOrderUsecase は管理者の注文運用（一覧・受理・日程・設置・返品・入金確定）。
type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	settings  *SettingsUsecase
	notifier  *OrderNotifier
}

func NewAdminOrderUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	settings *SettingsUsecase,
	notifier *OrderNotifier,
) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		auditRepo: auditRepo,
		settings:  settings,
		notifier:  notifier,
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

type AdminOrderListOutput struct {
	Items []OrderOutput `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *AdminOrderUsecase) ListOrders(ctx context.Context, adminID int64, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if adminID <= 0 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	//旧名（SHIPPED等）での絞り込みも受ける
	status := ""
	if in.Status != "" {
		normalized, err := model.NormalizeOrderStatus(in.Status)
		if err != nil {
			return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		status = string(normalized)
	}

	var out AdminOrderListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().ListAdmin(ctx, repo.AdminOrderListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: status,
			UserID: in.UserID,
			From:   in.From,
			To:     in.To,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			its, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, toOrderOutput(o, its))
		}

		out = AdminOrderListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})
	if err != nil {
		return AdminOrderListOutput{}, err
	}
	return out, nil
}

type AdminOrderDetailOutput struct {
	Order   OrderOutput    `json:"order"`
	Invoice *model.Invoice `json:"invoice"`
}

func (u *AdminOrderUsecase) GetOrderDetail(ctx context.Context, adminID int64, orderID int64) (AdminOrderDetailOutput, error) {
	if adminID <= 0 {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return AdminOrderDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out AdminOrderDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Order = toOrderOutput(o, items)

		inv, err := r.Invoices().FindByOrderID(ctx, orderID)
		if err == nil {
			out.Invoice = &inv
		} else if !errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return AdminOrderDetailOutput{}, err
	}
	return out, nil
}

type UpdateOrderStatusInput struct {
	Status      string
	ScheduledAt *time.Time
}

// UpdateStatus は注文ステータスを遷移させる。
// 許可リスト外は ErrInvalidStatusTransition。遷移先に応じた副作用
// （請求書発行・保証発行・在庫戻し）は同一トランザクションで行い、
// メールはコミット後に送る。
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, adminID int64, orderID int64, in UpdateOrderStatusInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	//旧名はここで正規化して以降は扱わない
	target, err := model.NormalizeOrderStatus(in.Status)
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if target == model.OrderStatusScheduled && in.ScheduledAt == nil {
		return NewHTTPError(http.StatusBadRequest, "scheduled_at required")
	}

	//税率はトランザクションの外で読む（キャッシュ経由）
	taxRateBP, err := u.settings.GetInt(ctx, model.SettingKeyTaxRateBP)
	if err != nil {
		return err
	}

	var updated model.Order
	before := model.OrderStatus("")

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		before = o.Status

		if !model.CanTransition(o.Status, target) {
			return model.ErrInvalidStatusTransition
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, target); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := time.Now()
		switch target {
		case model.OrderStatusAccepted:
			if err := u.issueInvoice(ctx, r, o, taxRateBP, now); err != nil {
				return err
			}

		case model.OrderStatusScheduled:
			if err := r.Orders().SetScheduledAt(ctx, orderID, *in.ScheduledAt); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			o.ScheduledAt = in.ScheduledAt

		case model.OrderStatusInstalled:
			if err := r.Orders().SetInstalledAt(ctx, orderID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			o.InstalledAt = &now
			if err := u.issueWarranties(ctx, r, o, now); err != nil {
				return err
			}

		case model.OrderStatusReturned:
			//在庫戻し
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		o.Status = target
		updated = o
		return nil
	})
	if err != nil {
		return err
	}

	//監査ログ（失敗しても遷移自体は成立済み）
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateOrderStatus,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   fmt.Sprintf(`{"status":"%s"}`, before),
		AfterJSON:    fmt.Sprintf(`{"status":"%s"}`, target),
		CreatedAt:    time.Now(),
	})

	switch target {
	case model.OrderStatusAccepted:
		u.notifier.OrderAccepted(updated)
	case model.OrderStatusScheduled:
		u.notifier.InstallationScheduled(updated)
	case model.OrderStatusInstalled:
		u.notifier.OrderInstalled(updated)
	case model.OrderStatusReturned:
		u.notifier.OrderReturned(updated)
	}
	return nil
}

// issueInvoice はACCEPTED時の請求書発行。既に発行済みなら何もしない。
func (u *AdminOrderUsecase) issueInvoice(ctx context.Context, r repo.TxRepos, o model.Order, taxRateBP int64, now time.Time) error {
	_, err := r.Invoices().FindByOrderID(ctx, o.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	subtotal := o.TotalAmount
	tax := subtotal * taxRateBP / 10000

	if _, err := r.Invoices().Create(ctx, model.Invoice{
		OrderID:       o.ID,
		Number:        "INV-" + uuid.NewString(),
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal + tax,
		PaymentStatus: o.PaymentStatus,
		IssuedAt:      now,
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// issueWarranties は設置完了時に保証対象の明細へ保証を発行する。
func (u *AdminOrderUsecase) issueWarranties(ctx context.Context, r repo.TxRepos, o model.Order, now time.Time) error {
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	warranties := make([]model.Warranty, 0, len(items))
	for _, it := range items {
		if it.WarrantyMonths <= 0 {
			continue
		}
		warranties = append(warranties, model.Warranty{
			Reference:           "WTY-" + uuid.NewString(),
			OrderItemID:         it.ID,
			OrderID:             o.ID,
			ProductNameSnapshot: it.ProductNameSnapshot,
			CustomerEmail:       o.CustomerEmail,
			StartDate:           now,
			EndDate:             now.AddDate(0, it.WarrantyMonths, 0),
			Status:              model.WarrantyStatusActive,
		})
	}
	if len(warranties) == 0 {
		return nil
	}

	if err := r.Warranties().CreateBulk(ctx, warranties); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// ConfirmPayment は管理者による手動の入金確定（銀行振込など）。
// 注文をPAIDへ、請求書があればそれもPAIDへ。二重確定は ErrOrderAlreadyPaid。
func (u *AdminOrderUsecase) ConfirmPayment(ctx context.Context, adminID int64, orderID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var paid model.Order

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

		now := time.Now()
		if err := r.Orders().UpdatePaymentStatus(ctx, orderID, model.PaymentStatusPaid); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//注文→請求書の順でPAIDを守る
		inv, err := r.Invoices().FindByOrderID(ctx, orderID)
		if err == nil {
			if err := r.Invoices().MarkPaid(ctx, inv.ID, now); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else if !errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if _, err := r.Payments().Create(ctx, model.Payment{
			Gateway:         model.PaymentGatewayManual,
			Reference:       "MAN-" + uuid.NewString(),
			TargetReference: o.Reference,
			Amount:          o.TotalAmount,
			Status:          model.PaymentStatusPaid,
			ReceivedAt:      now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.PaymentStatus = model.PaymentStatusPaid
		paid = o
		return nil
	})
	if err != nil {
		return err
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionConfirmPayment,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   orderID,
		BeforeJSON:   `{"payment_status":"UNPAID"}`,
		AfterJSON:    `{"payment_status":"PAID"}`,
		CreatedAt:    time.Now(),
	})

	u.notifier.PaymentReceived(paid)
	return nil
}
