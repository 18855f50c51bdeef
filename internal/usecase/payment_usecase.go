package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"go.uber.org/zap"
)

// WebhookGuard はWebhook再送の一回限りガードの約束。実装は infra/cache。
// Releaseは消し込み失敗時の解放（再送をもう一度通す）。
type WebhookGuard interface {
	FirstDelivery(ctx context.Context, gateway string, reference string) (bool, error)
	Release(ctx context.Context, gateway string, reference string) error
}

// 署名不一致。ハンドラは401で返す。
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

// PaymentUsecase はゲートウェイWebhookの検証と入金消し込み。
type PaymentUsecase struct {
	tx       repo.TransactionManager
	guard    WebhookGuard
	notifier *OrderNotifier
	logger   *zap.Logger

	paystackSecret    string
	flutterwaveSecret string
}

func NewPaymentUsecase(
	tx repo.TransactionManager,
	guard WebhookGuard,
	notifier *OrderNotifier,
	logger *zap.Logger,
	paystackSecret string,
	flutterwaveSecret string,
) *PaymentUsecase {
	return &PaymentUsecase{
		tx:                tx,
		guard:             guard,
		notifier:          notifier,
		logger:            logger,
		paystackSecret:    paystackSecret,
		flutterwaveSecret: flutterwaveSecret,
	}
}

type paystackEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		Amount    int64  `json:"amount"`
	} `json:"data"`
}

type flutterwaveEvent struct {
	Event string `json:"event"`
	Data  struct {
		TxRef  string `json:"tx_ref"`
		Amount int64  `json:"amount"`
		Status string `json:"status"`
	} `json:"data"`
}

// HandlePaystack はPaystackのWebhookを処理する。
// 署名はリクエストボディ生バイトのHMAC-SHA512（hex）で検証する。
func (u *PaymentUsecase) HandlePaystack(ctx context.Context, rawBody []byte, signature string) error {
	mac := hmac.New(sha512.New, []byte(u.paystackSecret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidWebhookSignature
	}

	var ev paystackEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if ev.Event != "charge.success" {
		//対象外イベントは受領だけして無視
		return nil
	}

	return u.settle(ctx, model.PaymentGatewayPaystack, ev.Data.Reference, ev.Data.Amount)
}

// HandleFlutterwave はFlutterwaveのWebhookを処理する。
// 署名はverif-hashヘッダと共有シークレットの一致で検証する。
func (u *PaymentUsecase) HandleFlutterwave(ctx context.Context, rawBody []byte, verifHash string) error {
	if subtle.ConstantTimeCompare([]byte(u.flutterwaveSecret), []byte(verifHash)) != 1 {
		return ErrInvalidWebhookSignature
	}

	var ev flutterwaveEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if ev.Event != "charge.completed" || ev.Data.Status != "successful" {
		return nil
	}

	return u.settle(ctx, model.PaymentGatewayFlutterwave, ev.Data.TxRef, ev.Data.Amount)
}

// settle は参照プレフィックスで注文／分割払いへ振り分けて消し込む。
// 再送はRedisのSET NXガードとpayments.reference一意制約の二段で落とす。
func (u *PaymentUsecase) settle(ctx context.Context, gateway model.PaymentGateway, reference string, amount int64) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return NewHTTPError(http.StatusBadRequest, "reference required")
	}

	guardHeld := false
	first, err := u.guard.FirstDelivery(ctx, string(gateway), reference)
	if err != nil {
		//ガード障害時はDB側の一意制約に任せて続行
		u.logger.Warn("webhook replay guard unavailable",
			zap.String("gateway", string(gateway)), zap.String("reference", reference), zap.Error(err))
	} else if !first {
		return nil
	} else {
		guardHeld = true
	}

	var paidOrder *model.Order

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//処理済み参照なら何もしない
		_, seen, err := r.Payments().FindByReference(ctx, gatewayPaymentRef(gateway, reference))
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if seen {
			return nil
		}

		switch {
		case strings.HasPrefix(reference, "ORD-"):
			o, err := u.settleOrder(ctx, r, gateway, reference, amount)
			if err != nil {
				return err
			}
			paidOrder = o

		case strings.HasPrefix(reference, "INST-"):
			o, err := u.settleInstallment(ctx, r, gateway, reference, amount)
			if err != nil {
				return err
			}
			paidOrder = o

		default:
			u.logger.Warn("webhook for unknown reference",
				zap.String("gateway", string(gateway)), zap.String("reference", reference))
			return nil
		}
		return nil
	})
	if err != nil {
		//失敗した配信のガードは解放しておく。解放できなくても
		//ゲートウェイの再送はTTL失効後かDBの一意制約で決着する。
		if guardHeld {
			if relErr := u.guard.Release(ctx, string(gateway), reference); relErr != nil {
				u.logger.Warn("webhook replay guard release failed",
					zap.String("gateway", string(gateway)), zap.String("reference", reference), zap.Error(relErr))
			}
		}
		return err
	}

	if paidOrder != nil {
		u.notifier.PaymentReceived(*paidOrder)
	}
	return nil
}

// ゲートウェイ参照はゲートウェイ間で衝突しうるので接頭辞を付けて保存する。
func gatewayPaymentRef(gateway model.PaymentGateway, reference string) string {
	return string(gateway) + ":" + reference
}

// settleOrder は一括払い（ORD-）の消し込み。
func (u *PaymentUsecase) settleOrder(ctx context.Context, r repo.TxRepos, gateway model.PaymentGateway, reference string, amount int64) (*model.Order, error) {
	o, err := r.Orders().FindByReference(ctx, reference)
	if errors.Is(err, repo.ErrNotFound) {
		u.logger.Warn("webhook for unknown order", zap.String("reference", reference))
		return nil, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()

	//金額不足は記録だけしてPAIDにはしない
	if amount < o.TotalAmount {
		u.logger.Warn("webhook amount below order total",
			zap.String("reference", reference),
			zap.Int64("amount", amount),
			zap.Int64("expected", o.TotalAmount))
		if _, err := r.Payments().Create(ctx, model.Payment{
			Gateway:         gateway,
			Reference:       gatewayPaymentRef(gateway, reference),
			TargetReference: reference,
			Amount:          amount,
			Status:          model.PaymentStatusFailed,
			ReceivedAt:      now,
		}); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil, nil
	}

	if _, err := r.Payments().Create(ctx, model.Payment{
		Gateway:         gateway,
		Reference:       gatewayPaymentRef(gateway, reference),
		TargetReference: reference,
		Amount:          amount,
		Status:          model.PaymentStatusPaid,
		ReceivedAt:      now,
	}); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if o.IsPaid() {
		//二重入金。記録は残すがステータスは触らない
		return nil, nil
	}

	if err := r.Orders().UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusPaid); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	inv, err := r.Invoices().FindByOrderID(ctx, o.ID)
	if err == nil {
		if err := r.Invoices().MarkPaid(ctx, inv.ID, now); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.PaymentStatus = model.PaymentStatusPaid
	return &o, nil
}

// settleInstallment は分割払い1回分（INST-）の消し込み。
// 全回分がPAIDになったらプランをCOMPLETEDにして注文もPAIDへ。
func (u *PaymentUsecase) settleInstallment(ctx context.Context, r repo.TxRepos, gateway model.PaymentGateway, reference string, amount int64) (*model.Order, error) {
	ip, err := r.Installments().FindPaymentByReference(ctx, reference)
	if errors.Is(err, repo.ErrNotFound) {
		u.logger.Warn("webhook for unknown installment", zap.String("reference", reference))
		return nil, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()

	if amount < ip.Amount {
		u.logger.Warn("webhook amount below installment amount",
			zap.String("reference", reference),
			zap.Int64("amount", amount),
			zap.Int64("expected", ip.Amount))
		if _, err := r.Payments().Create(ctx, model.Payment{
			Gateway:         gateway,
			Reference:       gatewayPaymentRef(gateway, reference),
			TargetReference: reference,
			Amount:          amount,
			Status:          model.PaymentStatusFailed,
			ReceivedAt:      now,
		}); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil, nil
	}

	if _, err := r.Payments().Create(ctx, model.Payment{
		Gateway:         gateway,
		Reference:       gatewayPaymentRef(gateway, reference),
		TargetReference: reference,
		Amount:          amount,
		Status:          model.PaymentStatusPaid,
		ReceivedAt:      now,
	}); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if ip.Status == model.InstallmentPaymentStatusPaid {
		return nil, nil
	}
	if err := r.Installments().MarkPaymentPaid(ctx, ip.ID, now); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//残回数チェック
	payments, err := r.Installments().ListPaymentsByPlanID(ctx, ip.PlanID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, p := range payments {
		if p.ID == ip.ID {
			continue
		}
		if p.Status != model.InstallmentPaymentStatusPaid {
			return nil, nil
		}
	}

	//完済
	if err := r.Installments().UpdatePlanStatus(ctx, ip.PlanID, model.InstallmentPlanStatusCompleted); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	plan, err := r.Installments().FindPlanByID(ctx, ip.PlanID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o, err := r.Orders().FindByID(ctx, plan.OrderID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.IsPaid() {
		return nil, nil
	}

	if err := r.Orders().UpdatePaymentStatus(ctx, o.ID, model.PaymentStatusPaid); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	inv, err := r.Invoices().FindByOrderID(ctx, o.ID)
	if err == nil {
		if err := r.Invoices().MarkPaid(ctx, inv.ID, now); err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.PaymentStatus = model.PaymentStatusPaid
	return &o, nil
}
