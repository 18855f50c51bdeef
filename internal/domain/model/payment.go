package model

import "time"

type PaymentGateway string

const (
	PaymentGatewayPaystack    PaymentGateway = "PAYSTACK"
	PaymentGatewayFlutterwave PaymentGateway = "FLUTTERWAVE"
	//管理者による手動確定（銀行振込など）
	PaymentGatewayManual PaymentGateway = "MANUAL"
)

// Webhook経由で確定した入金の記録。
// Referenceはゲートウェイ側の参照で、リプレイ防止キーにも使う。
type Payment struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Gateway   PaymentGateway `gorm:"type:varchar(20);not null;index" json:"gateway"`
	Reference string         `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"`

	//ORD-xxx か INST-xxx
	TargetReference string `gorm:"type:varchar(64);not null;index" json:"target_reference"`

	Amount int64         `gorm:"not null" json:"amount"`
	Status PaymentStatus `gorm:"type:varchar(20);not null" json:"status"`

	ReceivedAt time.Time `gorm:"not null" json:"received_at"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
