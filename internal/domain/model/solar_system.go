package model

import (
	"time"

	"gorm.io/gorm"
)

// パッケージ化されたソーラーシステム一式。
// 構成（パネル何枚・バッテリー何台）は説明用のサマリ文字列で持つ。
type SolarSystem struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//総容量kW（0.1kW単位で保存したくないのでWで持つ）
	TotalCapacityW int64 `gorm:"not null" json:"total_capacity_w"`

	ComponentsSummary string `gorm:"type:text" json:"components_summary"`
	Price             int64  `gorm:"not null" json:"price"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
