package model

import (
	"errors"
	"time"
)

type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "DRAFT"
	QuoteStatusSent      QuoteStatus = "SENT"
	QuoteStatusAccepted  QuoteStatus = "ACCEPTED"
	QuoteStatusRejected  QuoteStatus = "REJECTED"
	QuoteStatusExpired   QuoteStatus = "EXPIRED"
	QuoteStatusConverted QuoteStatus = "CONVERTED"
)

var (
	//SENT以外・期限切れの見積は受諾できない
	ErrQuoteNotAcceptable = errors.New("quote not acceptable")
	//ACCEPTED以外は注文に変換できない
	ErrQuoteNotConvertible = errors.New("quote not convertible")
)

// 見積。受注前の交渉ドキュメントで、受諾後に注文へ変換できる。
type Quote struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference string `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`

	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string `gorm:"type:varchar(255);not null;index" json:"customer_email"`
	CustomerPhone string `gorm:"type:varchar(30)" json:"customer_phone"`

	Status     QuoteStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Subtotal   int64       `gorm:"not null" json:"subtotal"`
	Discount   int64       `gorm:"not null;default:0" json:"discount"`
	Total      int64       `gorm:"not null" json:"total"`
	ValidUntil time.Time   `gorm:"not null" json:"valid_until"`

	//変換後の注文ID（CONVERTEDのときだけ入る）
	OrderID *int64 `gorm:"index" json:"order_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// CanBeAccepted はSENTかつ有効期限内のときだけtrue。
func (q Quote) CanBeAccepted(now time.Time) bool {
	return q.Status == QuoteStatusSent && !now.After(q.ValidUntil)
}

// CanBeConverted はACCEPTEDで未変換のときだけtrue。
func (q Quote) CanBeConverted() bool {
	return q.Status == QuoteStatusAccepted && q.OrderID == nil
}
