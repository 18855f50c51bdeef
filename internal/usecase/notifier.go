package usecase

import (
	"fmt"

	"app/internal/domain/model"

	"go.uber.org/zap"
)

// メール送信の約束。実装は infra/mail。
type Mailer interface {
	Send(to string, subject string, body string) error
}

// OrderNotifier は注文ライフサイクルのメール通知。
// 送信失敗はログに残すだけで呼び出し元へは返さない
// （ステータス更新は既にコミット済みのため）。
type OrderNotifier struct {
	mailer Mailer
	logger *zap.Logger
}

func NewOrderNotifier(mailer Mailer, logger *zap.Logger) *OrderNotifier {
	return &OrderNotifier{mailer: mailer, logger: logger}
}

func (n *OrderNotifier) send(o model.Order, subject string, body string) {
	if err := n.mailer.Send(o.CustomerEmail, subject, body); err != nil {
		n.logger.Error("order mail send failed",
			zap.String("order_reference", o.Reference),
			zap.String("to", o.CustomerEmail),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func (n *OrderNotifier) OrderPlaced(o model.Order) {
	n.send(o, fmt.Sprintf("Order %s received", o.Reference),
		fmt.Sprintf("Hi %s,\n\nWe received your order %s. We will review it shortly.\n", o.CustomerName, o.Reference))
}

func (n *OrderNotifier) OrderAccepted(o model.Order) {
	n.send(o, fmt.Sprintf("Order %s accepted", o.Reference),
		fmt.Sprintf("Hi %s,\n\nYour order %s has been accepted. Your invoice is attached to your account.\n", o.CustomerName, o.Reference))
}

func (n *OrderNotifier) InstallationScheduled(o model.Order) {
	when := "soon"
	if o.ScheduledAt != nil {
		when = o.ScheduledAt.Format("2006-01-02")
	}
	n.send(o, fmt.Sprintf("Installation scheduled for order %s", o.Reference),
		fmt.Sprintf("Hi %s,\n\nInstallation for order %s is scheduled for %s.\n", o.CustomerName, o.Reference, when))
}

func (n *OrderNotifier) OrderInstalled(o model.Order) {
	n.send(o, fmt.Sprintf("Order %s installed", o.Reference),
		fmt.Sprintf("Hi %s,\n\nYour solar installation for order %s is complete. Warranties for eligible items are now active.\n", o.CustomerName, o.Reference))
}

func (n *OrderNotifier) OrderReturned(o model.Order) {
	n.send(o, fmt.Sprintf("Order %s cancelled", o.Reference),
		fmt.Sprintf("Hi %s,\n\nYour order %s has been cancelled.\n", o.CustomerName, o.Reference))
}

func (n *OrderNotifier) PaymentReceived(o model.Order) {
	n.send(o, fmt.Sprintf("Payment received for order %s", o.Reference),
		fmt.Sprintf("Hi %s,\n\nWe received your payment for order %s. Thank you.\n", o.CustomerName, o.Reference))
}

func (n *OrderNotifier) QuoteSent(q model.Quote) {
	if err := n.mailer.Send(q.CustomerEmail, fmt.Sprintf("Your quotation %s", q.Reference),
		fmt.Sprintf("Hi %s,\n\nYour quotation %s is ready. It is valid until %s.\n",
			q.CustomerName, q.Reference, q.ValidUntil.Format("2006-01-02"))); err != nil {
		n.logger.Error("quote mail send failed",
			zap.String("quote_reference", q.Reference),
			zap.String("to", q.CustomerEmail),
			zap.Error(err),
		)
	}
}
