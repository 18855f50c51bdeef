package model

import "time"

// アプリ設定のキー。
const (
	SettingKeyTaxRateBP      = "tax_rate_bp" // 税率（basis point、750=7.5%）
	SettingKeyCurrency       = "currency"
	SettingKeySupportEmail   = "support_email"
	SettingKeySupportPhone   = "support_phone"
	SettingKeyQuoteValidDays = "quote_valid_days"
)

// key-value設定。読みはRedisのキー別キャッシュ経由、
// 更新時は該当キーだけ無効化する（全flushはしない）。
type Setting struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
