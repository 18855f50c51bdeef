package model

import "time"

type InstallmentPlanStatus string

const (
	InstallmentPlanStatusActive    InstallmentPlanStatus = "ACTIVE"
	InstallmentPlanStatusCompleted InstallmentPlanStatus = "COMPLETED"
	InstallmentPlanStatusDefaulted InstallmentPlanStatus = "DEFAULTED"
)

type InstallmentPaymentStatus string

const (
	InstallmentPaymentStatusPending InstallmentPaymentStatus = "PENDING"
	InstallmentPaymentStatusPaid    InstallmentPaymentStatus = "PAID"
	InstallmentPaymentStatusOverdue InstallmentPaymentStatus = "OVERDUE"
)

// 分割払いプラン。頭金＋月額N回で注文合計をカバーする。
type InstallmentPlan struct {
	ID      int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID int64 `gorm:"not null;uniqueIndex" json:"order_id"`

	DownPayment       int64 `gorm:"not null" json:"down_payment"`
	InstallmentCount  int   `gorm:"not null" json:"installment_count"`
	InstallmentAmount int64 `gorm:"not null" json:"installment_amount"`

	Status    InstallmentPlanStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt time.Time             `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time             `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 分割払いの1回分。ReferenceはINST-プレフィックスでWebhookから照合する。
type InstallmentPayment struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID    int64  `gorm:"not null;index" json:"plan_id"`
	Reference string `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`

	Sequence int       `gorm:"not null" json:"sequence"`
	Amount   int64     `gorm:"not null" json:"amount"`
	DueDate  time.Time `gorm:"not null" json:"due_date"`

	Status InstallmentPaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	PaidAt *time.Time               `json:"paid_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
