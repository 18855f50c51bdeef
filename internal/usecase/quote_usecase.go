package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/infra/pdfgen"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

// QuoteUsecase は見積の作成・送付・受諾・注文変換。
type QuoteUsecase struct {
	tx        repo.TransactionManager
	auditRepo repo.AuditLogRepository
	settings  *SettingsUsecase
	notifier  *OrderNotifier
	renderer  *pdfgen.Renderer
}

func NewQuoteUsecase(
	tx repo.TransactionManager,
	auditRepo repo.AuditLogRepository,
	settings *SettingsUsecase,
	notifier *OrderNotifier,
	renderer *pdfgen.Renderer,
) *QuoteUsecase {
	return &QuoteUsecase{
		tx:        tx,
		auditRepo: auditRepo,
		settings:  settings,
		notifier:  notifier,
		renderer:  renderer,
	}
}

type QuoteItemInput struct {
	ProductID   *int64
	Description string
	UnitPrice   int64
	Quantity    int64
}

type QuoteInput struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Discount      int64
	Items         []QuoteItemInput
}

type QuoteOutput struct {
	Quote model.Quote       `json:"quote"`
	Items []model.QuoteItem `json:"items"`
}

func (in QuoteInput) validate() error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return NewHTTPError(http.StatusBadRequest, "customer_name required")
	}
	if strings.TrimSpace(in.CustomerEmail) == "" {
		return NewHTTPError(http.StatusBadRequest, "customer_email required")
	}
	if in.Discount < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid discount")
	}
	if len(in.Items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if strings.TrimSpace(it.Description) == "" {
			return NewHTTPError(http.StatusBadRequest, "item description required")
		}
		if it.UnitPrice < 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid unit_price")
		}
		if it.Quantity < 1 {
			return NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}
	return nil
}

func quoteTotals(in QuoteInput) (subtotal int64, total int64, err error) {
	for _, it := range in.Items {
		subtotal += it.UnitPrice * it.Quantity
	}
	total = subtotal - in.Discount
	if total < 0 {
		return 0, 0, NewHTTPError(http.StatusBadRequest, "discount exceeds subtotal")
	}
	return subtotal, total, nil
}

// CreateQuote はDRAFTの見積を作る。有効期限は設定のquote_valid_days。
func (u *QuoteUsecase) CreateQuote(ctx context.Context, adminID int64, in QuoteInput) (QuoteOutput, error) {
	if adminID <= 0 {
		return QuoteOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return QuoteOutput{}, err
	}

	subtotal, total, err := quoteTotals(in)
	if err != nil {
		return QuoteOutput{}, err
	}

	validDays, err := u.settings.GetInt(ctx, model.SettingKeyQuoteValidDays)
	if err != nil {
		return QuoteOutput{}, err
	}

	var out QuoteOutput
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().Create(ctx, model.Quote{
			Reference:     "QUO-" + uuid.NewString(),
			CustomerName:  strings.TrimSpace(in.CustomerName),
			CustomerEmail: strings.TrimSpace(in.CustomerEmail),
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			Status:        model.QuoteStatusDraft,
			Subtotal:      subtotal,
			Discount:      in.Discount,
			Total:         total,
			ValidUntil:    time.Now().AddDate(0, 0, int(validDays)),
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]model.QuoteItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.QuoteItem{
				QuoteID:     q.ID,
				ProductID:   it.ProductID,
				Description: strings.TrimSpace(it.Description),
				UnitPrice:   it.UnitPrice,
				Quantity:    it.Quantity,
			})
		}
		if err := r.QuoteItems().ReplaceForQuote(ctx, q.ID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = QuoteOutput{Quote: q, Items: items}
		return nil
	})
	if err != nil {
		return QuoteOutput{}, err
	}
	return out, nil
}

// UpdateQuote はDRAFTの間だけ編集できる。明細は全入れ替え。
func (u *QuoteUsecase) UpdateQuote(ctx context.Context, adminID int64, quoteID int64, in QuoteInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if quoteID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	subtotal, total, err := quoteTotals(in)
	if err != nil {
		return err
	}

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().FindByID(ctx, quoteID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if q.Status != model.QuoteStatusDraft {
			return NewHTTPError(http.StatusConflict, "quote is not editable")
		}

		q.CustomerName = strings.TrimSpace(in.CustomerName)
		q.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
		q.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
		q.Subtotal = subtotal
		q.Discount = in.Discount
		q.Total = total

		if err := r.Quotes().Update(ctx, q); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]model.QuoteItem, 0, len(in.Items))
		for _, it := range in.Items {
			items = append(items, model.QuoteItem{
				QuoteID:     quoteID,
				ProductID:   it.ProductID,
				Description: strings.TrimSpace(it.Description),
				UnitPrice:   it.UnitPrice,
				Quantity:    it.Quantity,
			})
		}
		if err := r.QuoteItems().ReplaceForQuote(ctx, quoteID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateQuote,
		ResourceType: model.AuditResourceQuote,
		ResourceID:   quoteID,
		AfterJSON:    fmt.Sprintf(`{"subtotal":%d,"discount":%d,"total":%d}`, subtotal, in.Discount, total),
		CreatedAt:    time.Now(),
	})
	return nil
}

// SendQuote はDRAFT→SENT。有効期限を送付時点から引き直して顧客へメールする。
func (u *QuoteUsecase) SendQuote(ctx context.Context, adminID int64, quoteID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if quoteID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	validDays, err := u.settings.GetInt(ctx, model.SettingKeyQuoteValidDays)
	if err != nil {
		return err
	}

	var sent model.Quote
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().FindByID(ctx, quoteID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if q.Status != model.QuoteStatusDraft {
			return NewHTTPError(http.StatusConflict, "quote already sent")
		}

		q.Status = model.QuoteStatusSent
		q.ValidUntil = time.Now().AddDate(0, 0, int(validDays))
		if err := r.Quotes().Update(ctx, q); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		sent = q
		return nil
	})
	if err != nil {
		return err
	}

	u.notifier.QuoteSent(sent)
	return nil
}

type AdminQuoteListInput struct {
	Page   int
	Limit  int
	Status string
	Email  string
}

type AdminQuoteListOutput struct {
	Items []model.Quote `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (u *QuoteUsecase) ListQuotes(ctx context.Context, adminID int64, in AdminQuoteListInput) (AdminQuoteListOutput, error) {
	if adminID <= 0 {
		return AdminQuoteListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.Page < 1 {
		return AdminQuoteListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminQuoteListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out AdminQuoteListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		items, total, err := r.Quotes().ListAdmin(ctx, repo.AdminQuoteListFilter{
			Page:   in.Page,
			Limit:  in.Limit,
			Status: in.Status,
			Email:  in.Email,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = AdminQuoteListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}
		return nil
	})
	if err != nil {
		return AdminQuoteListOutput{}, err
	}
	return out, nil
}

// GetQuoteByReference は顧客向けの見積照会。参照番号＋メール一致で返す。
func (u *QuoteUsecase) GetQuoteByReference(ctx context.Context, reference string, email string) (QuoteOutput, error) {
	reference = strings.TrimSpace(reference)
	email = strings.TrimSpace(email)
	if reference == "" || email == "" {
		return QuoteOutput{}, NewHTTPError(http.StatusBadRequest, "reference and email required")
	}

	var out QuoteOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().FindByReference(ctx, reference)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !strings.EqualFold(q.CustomerEmail, email) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		//DRAFTは顧客にはまだ見せない
		if q.Status == model.QuoteStatusDraft {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.QuoteItems().ListByQuoteID(ctx, q.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = QuoteOutput{Quote: q, Items: items}
		return nil
	})
	if err != nil {
		return QuoteOutput{}, err
	}
	return out, nil
}

// AcceptQuote は顧客による受諾。SENTかつ期限内だけ通る。
// 期限切れのSENTはこのタイミングでEXPIREDへ倒す。
func (u *QuoteUsecase) AcceptQuote(ctx context.Context, reference string, email string) error {
	return u.respondToQuote(ctx, reference, email, model.QuoteStatusAccepted)
}

// RejectQuote は顧客による辞退。
func (u *QuoteUsecase) RejectQuote(ctx context.Context, reference string, email string) error {
	return u.respondToQuote(ctx, reference, email, model.QuoteStatusRejected)
}

func (u *QuoteUsecase) respondToQuote(ctx context.Context, reference string, email string, target model.QuoteStatus) error {
	reference = strings.TrimSpace(reference)
	email = strings.TrimSpace(email)
	if reference == "" || email == "" {
		return NewHTTPError(http.StatusBadRequest, "reference and email required")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().FindByReference(ctx, reference)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !strings.EqualFold(q.CustomerEmail, email) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		now := time.Now()
		if !q.CanBeAccepted(now) {
			//期限切れはここで確定させる
			if q.Status == model.QuoteStatusSent && now.After(q.ValidUntil) {
				if err := r.Quotes().UpdateStatus(ctx, q.ID, model.QuoteStatusExpired); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
			return model.ErrQuoteNotAcceptable
		}

		if err := r.Quotes().UpdateStatus(ctx, q.ID, target); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// RenderPDF は見積書PDFを生成して返す。照会と同じ本人確認を通す。
func (u *QuoteUsecase) RenderPDF(ctx context.Context, reference string, email string) ([]byte, string, error) {
	out, err := u.GetQuoteByReference(ctx, reference, email)
	if err != nil {
		return nil, "", err
	}

	currency, err := u.settings.GetString(ctx, model.SettingKeyCurrency)
	if err != nil {
		return nil, "", err
	}

	pdf, err := u.renderer.Quote(pdfgen.QuoteDocument{
		Quote:    out.Quote,
		Items:    out.Items,
		Currency: currency,
	})
	if err != nil {
		return nil, "", NewHTTPError(http.StatusInternalServerError, "pdf render failed")
	}
	return pdf, out.Quote.Reference + ".pdf", nil
}

type ConvertQuoteInput struct {
	InstallAddress string
	InstallCity    string
	InstallState   string
}

// ConvertQuote はACCEPTEDの見積を注文に変換する。
// 商品に紐づく明細は在庫を減らす。合計は見積のTotal（値引き込み）。
func (u *QuoteUsecase) ConvertQuote(ctx context.Context, adminID int64, quoteID int64, in ConvertQuoteInput) (OrderOutput, error) {
	if adminID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if quoteID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.InstallAddress) == "" || strings.TrimSpace(in.InstallCity) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "install address required")
	}

	var out OrderOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		q, err := r.Quotes().FindByID(ctx, quoteID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !q.CanBeConverted() {
			return model.ErrQuoteNotConvertible
		}

		quoteItems, err := r.QuoteItems().ListByQuoteID(ctx, quoteID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(quoteItems) == 0 {
			return NewHTTPError(http.StatusConflict, "quote has no items")
		}

		orderItems := make([]model.OrderItem, 0, len(quoteItems))
		for _, qi := range quoteItems {
			warrantyMonths := 0
			productID := int64(0)
			if qi.ProductID != nil {
				productID = *qi.ProductID
				p, err := r.Products().FindByID(ctx, productID)
				if err != nil && !errors.Is(err, repo.ErrNotFound) {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if err == nil {
					warrantyMonths = p.WarrantyMonths
				}

				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, productID, qi.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusConflict, "out of stock")
				}
			}

			orderItems = append(orderItems, model.OrderItem{
				ProductID:           productID,
				ProductNameSnapshot: qi.Description,
				UnitPriceSnapshot:   qi.UnitPrice,
				Quantity:            qi.Quantity,
				WarrantyMonths:      warrantyMonths,
			})
		}

		now := time.Now()
		order := model.Order{
			Reference:      "ORD-" + uuid.NewString(),
			Status:         model.OrderStatusPending,
			PaymentStatus:  model.PaymentStatusUnpaid,
			CustomerName:   q.CustomerName,
			CustomerEmail:  q.CustomerEmail,
			CustomerPhone:  q.CustomerPhone,
			InstallAddress: strings.TrimSpace(in.InstallAddress),
			InstallCity:    strings.TrimSpace(in.InstallCity),
			InstallState:   strings.TrimSpace(in.InstallState),
			TotalAmount:    q.Total,
			IdempotencyKey: fmt.Sprintf("quote-convert-%d", quoteID),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return NewHTTPError(http.StatusConflict, "quote already converted")
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Quotes().UpdateStatus(ctx, quoteID, model.QuoteStatusConverted); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Quotes().SetOrderID(ctx, quoteID, orderID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		return nil
	})
	if err != nil {
		return OrderOutput{}, err
	}

	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       model.AuditActionUpdateQuote,
		ResourceType: model.AuditResourceQuote,
		ResourceID:   quoteID,
		AfterJSON:    fmt.Sprintf(`{"status":"CONVERTED","order_id":%d}`, out.ID),
		CreatedAt:    time.Now(),
	})
	return out, nil
}
