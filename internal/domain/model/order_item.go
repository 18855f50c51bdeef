package model

import "time"

// 注文明細。カタログ側の価格改定に影響されないよう
// 商品名・単価・保証月数を注文時点でスナップショットする。
type OrderItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID             int64     `gorm:"not null;index" json:"order_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	WarrantyMonths      int       `gorm:"not null;default:0" json:"warranty_months"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
