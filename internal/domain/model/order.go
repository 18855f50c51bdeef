package model

import (
	"errors"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusScheduled  OrderStatus = "SCHEDULED"
	OrderStatusInstalled  OrderStatus = "INSTALLED"
	OrderStatusReturned   OrderStatus = "RETURNED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

var (
	//終端状態・未許可の遷移
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	//INSTALLED/RETURNED以降はキャンセル不可
	ErrOrderNotCancellable = errors.New("order not cancellable")
	//二重の支払い確定
	ErrOrderAlreadyPaid = errors.New("order already paid")
	//不明なステータス文字列
	ErrUnknownOrderStatus = errors.New("unknown order status")
)

// 前状態ごとの許可リスト。ここに無い遷移は全部拒否。
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusAccepted, OrderStatusReturned},
	OrderStatusProcessing: {OrderStatusAccepted, OrderStatusReturned},
	OrderStatusAccepted:   {OrderStatusScheduled, OrderStatusReturned},
	OrderStatusScheduled:  {OrderStatusInstalled, OrderStatusReturned},
	//INSTALLED / RETURNED は終端
	OrderStatusInstalled: {},
	OrderStatusReturned:  {},
}

// CanTransition はfrom→toが許可リストに載っているかだけを判定する純関数。
func CanTransition(from OrderStatus, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal は以降の遷移が存在しないか。
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// NormalizeOrderStatus は旧マイグレーション由来の別名を正規化する。
// SHIPPED/DELIVERED/CANCELLED はDBには保存しない。
func NormalizeOrderStatus(raw string) (OrderStatus, error) {
	switch raw {
	case "PENDING", "PROCESSING", "ACCEPTED", "SCHEDULED", "INSTALLED", "RETURNED":
		return OrderStatus(raw), nil
	case "SHIPPED":
		return OrderStatusScheduled, nil
	case "DELIVERED":
		return OrderStatusInstalled, nil
	case "CANCELLED", "CANCELED", "REFUNDED":
		return OrderStatusReturned, nil
	default:
		return "", ErrUnknownOrderStatus
	}
}

// 注文。ゲスト注文を許すため UserID はnullable。
// 連絡先と設置先は注文時点のスナップショットとして非正規化で持つ。
type Order struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference string `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`
	UserID    *int64 `gorm:"index" json:"user_id"`

	Status        OrderStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`

	//連絡先スナップショット
	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	//設置先住所
	InstallAddress string `gorm:"type:varchar(255);not null" json:"install_address"`
	InstallCity    string `gorm:"type:varchar(100);not null" json:"install_city"`
	InstallState   string `gorm:"type:varchar(100)" json:"install_state"`

	TotalAmount    int64      `gorm:"not null" json:"total_amount"`
	IdempotencyKey string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	ScheduledAt    *time.Time `json:"scheduled_at"`
	InstalledAt    *time.Time `json:"installed_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// IsPaid は payment_status がPAIDのときだけtrue。
func (o Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// CanBeCancelled は終端前の状態だけキャンセル可能。
func (o Order) CanBeCancelled() bool {
	return !o.Status.IsTerminal()
}
