package model

import "time"

// 見積の明細。商品に紐づかない作業費なども書けるよう
// ProductID はnullableで、説明文と単価を直接持つ。
type QuoteItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuoteID     int64     `gorm:"not null;index" json:"quote_id"`
	ProductID   *int64    `gorm:"index" json:"product_id"`
	Description string    `gorm:"type:varchar(255);not null" json:"description"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
