package model

import "time"

// 請求書。注文と1対1で、payment_statusは注文側をミラーする。
// 「注文がPAIDなら請求書もPAID」は confirmPayment の呼び出し順で守る。
type Invoice struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64  `gorm:"not null;uniqueIndex" json:"order_id"`
	Number  string `gorm:"type:varchar(64);not null;uniqueIndex" json:"number"`

	Subtotal int64 `gorm:"not null" json:"subtotal"`
	Tax      int64 `gorm:"not null" json:"tax"`
	Total    int64 `gorm:"not null" json:"total"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	IssuedAt      time.Time     `gorm:"not null" json:"issued_at"`
	PaidAt        *time.Time    `json:"paid_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
