package model

import (
	"time"

	"gorm.io/gorm"
)

type ProductCategory string

const (
	ProductCategoryPanel     ProductCategory = "PANEL"
	ProductCategoryBattery   ProductCategory = "BATTERY"
	ProductCategoryInverter  ProductCategory = "INVERTER"
	ProductCategoryAccessory ProductCategory = "ACCESSORY"
)

// 太陽光機器の単品商品。価格は最小通貨単位のint64。
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU         string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	Price       int64           `gorm:"not null" json:"price"`
	Stock       int64           `gorm:"not null" json:"stock"`

	//仕様値。パネルはW、バッテリーはWh、インバーターはVAを入れる
	WattageW    int64 `gorm:"not null;default:0" json:"wattage_w"`
	CapacityWh  int64 `gorm:"not null;default:0" json:"capacity_wh"`
	InverterVA  int64 `gorm:"not null;default:0" json:"inverter_va"`

	//保証対象外の商品は0
	WarrantyMonths int `gorm:"not null;default:0" json:"warranty_months"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
