package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/infra/pdfgen"
	repo "app/internal/repository"
)

// InvoiceUsecase は請求書の照会とPDF出力。
// 発行はACCEPTED遷移の副作用（AdminOrderUsecase側）で行う。
type InvoiceUsecase struct {
	tx       repo.TransactionManager
	settings *SettingsUsecase
	renderer *pdfgen.Renderer
}

func NewInvoiceUsecase(tx repo.TransactionManager, settings *SettingsUsecase, renderer *pdfgen.Renderer) *InvoiceUsecase {
	return &InvoiceUsecase{tx: tx, settings: settings, renderer: renderer}
}

type InvoiceDetailOutput struct {
	Invoice model.Invoice `json:"invoice"`
	Order   OrderOutput   `json:"order"`
}

// GetForCustomer は請求書番号＋メール一致で照会する。
func (u *InvoiceUsecase) GetForCustomer(ctx context.Context, number string, email string) (InvoiceDetailOutput, error) {
	number = strings.TrimSpace(number)
	email = strings.TrimSpace(email)
	if number == "" || email == "" {
		return InvoiceDetailOutput{}, NewHTTPError(http.StatusBadRequest, "number and email required")
	}

	var out InvoiceDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, o, items, err := u.loadByNumber(ctx, r, number)
		if err != nil {
			return err
		}
		if !strings.EqualFold(o.CustomerEmail, email) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		out = InvoiceDetailOutput{Invoice: inv, Order: toOrderOutput(o, items)}
		return nil
	})
	if err != nil {
		return InvoiceDetailOutput{}, err
	}
	return out, nil
}

// GetForAdmin は管理者向け。注文ID起点で照会する。
func (u *InvoiceUsecase) GetForAdmin(ctx context.Context, adminID int64, orderID int64) (InvoiceDetailOutput, error) {
	if adminID <= 0 {
		return InvoiceDetailOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return InvoiceDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out InvoiceDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, err := r.Invoices().FindByOrderID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = InvoiceDetailOutput{Invoice: inv, Order: toOrderOutput(o, items)}
		return nil
	})
	if err != nil {
		return InvoiceDetailOutput{}, err
	}
	return out, nil
}

// RenderPDF は請求書PDFを生成して返す。番号＋メール一致で本人確認する。
func (u *InvoiceUsecase) RenderPDF(ctx context.Context, number string, email string) ([]byte, string, error) {
	number = strings.TrimSpace(number)
	email = strings.TrimSpace(email)
	if number == "" || email == "" {
		return nil, "", NewHTTPError(http.StatusBadRequest, "number and email required")
	}

	var doc pdfgen.InvoiceDocument
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		inv, o, items, err := u.loadByNumber(ctx, r, number)
		if err != nil {
			return err
		}
		if !strings.EqualFold(o.CustomerEmail, email) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		doc = pdfgen.InvoiceDocument{Invoice: inv, Order: o, Items: items}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	currency, err := u.settings.GetString(ctx, model.SettingKeyCurrency)
	if err != nil {
		return nil, "", err
	}
	supportEmail, err := u.settings.GetString(ctx, model.SettingKeySupportEmail)
	if err != nil {
		return nil, "", err
	}
	doc.Currency = currency
	doc.SupportEmail = supportEmail

	pdf, err := u.renderer.Invoice(doc)
	if err != nil {
		return nil, "", NewHTTPError(http.StatusInternalServerError, "pdf render failed")
	}
	return pdf, doc.Invoice.Number + ".pdf", nil
}

func (u *InvoiceUsecase) loadByNumber(ctx context.Context, r repo.TxRepos, number string) (model.Invoice, model.Order, []model.OrderItem, error) {
	inv, err := r.Invoices().FindByNumber(ctx, number)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Invoice{}, model.Order{}, nil, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Invoice{}, model.Order{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o, err := r.Orders().FindByID(ctx, inv.OrderID)
	if err != nil {
		return model.Invoice{}, model.Order{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
	if err != nil {
		return model.Invoice{}, model.Order{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return inv, o, items, nil
}
