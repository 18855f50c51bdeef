package model

import (
	"errors"
	"time"
)

type WarrantyStatus string

const (
	WarrantyStatusActive  WarrantyStatus = "ACTIVE"
	WarrantyStatusExpired WarrantyStatus = "EXPIRED"
	WarrantyStatusClaimed WarrantyStatus = "CLAIMED"
)

type WarrantyClaimStatus string

const (
	WarrantyClaimStatusSubmitted   WarrantyClaimStatus = "SUBMITTED"
	WarrantyClaimStatusUnderReview WarrantyClaimStatus = "UNDER_REVIEW"
	WarrantyClaimStatusApproved    WarrantyClaimStatus = "APPROVED"
	WarrantyClaimStatusRejected    WarrantyClaimStatus = "REJECTED"
	WarrantyClaimStatusResolved    WarrantyClaimStatus = "RESOLVED"
)

var (
	//期限切れ・CLAIMED中の保証には申請できない
	ErrWarrantyNotClaimable = errors.New("warranty not claimable")
	//許可リスト外の申請ステータス遷移
	ErrInvalidClaimTransition = errors.New("invalid claim transition")
)

// 申請ステータスの許可リスト。
var claimTransitions = map[WarrantyClaimStatus][]WarrantyClaimStatus{
	WarrantyClaimStatusSubmitted:   {WarrantyClaimStatusUnderReview, WarrantyClaimStatusRejected},
	WarrantyClaimStatusUnderReview: {WarrantyClaimStatusApproved, WarrantyClaimStatusRejected},
	WarrantyClaimStatusApproved:    {WarrantyClaimStatusResolved},
	WarrantyClaimStatusRejected:    {WarrantyClaimStatusResolved},
	WarrantyClaimStatusResolved:    {},
}

// CanTransitionClaim は申請のfrom→toが許可されているか。
func CanTransitionClaim(from WarrantyClaimStatus, to WarrantyClaimStatus) bool {
	for _, next := range claimTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// 設置完了した注文明細ごとに発行される保証。
// 期限切れは読み出し時に end_date 比較で判定する（DB側のステータスは
// 手動起動のスイープでのみEXPIREDへ倒す）。
type Warranty struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference   string `gorm:"type:varchar(64);not null;uniqueIndex" json:"reference"`
	OrderItemID int64  `gorm:"not null;index" json:"order_item_id"`
	OrderID     int64  `gorm:"not null;index" json:"order_id"`

	ProductNameSnapshot string `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	CustomerEmail       string `gorm:"type:varchar(255);not null;index" json:"customer_email"`

	StartDate time.Time      `gorm:"not null" json:"start_date"`
	EndDate   time.Time      `gorm:"not null;index" json:"end_date"`
	Status    WarrantyStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// IsExpired は読み出し時点の期限判定。
func (w Warranty) IsExpired(now time.Time) bool {
	return now.After(w.EndDate)
}

// CanBeClaimed はACTIVEかつ期限内のときだけtrue。
func (w Warranty) CanBeClaimed(now time.Time) bool {
	return w.Status == WarrantyStatusActive && !w.IsExpired(now)
}

// 保証申請。
type WarrantyClaim struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	WarrantyID int64  `gorm:"not null;index" json:"warranty_id"`
	Subject    string `gorm:"type:varchar(255);not null" json:"subject"`
	Detail     string `gorm:"type:text" json:"detail"`

	Status     WarrantyClaimStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	AdminNote  string              `gorm:"type:text" json:"admin_note"`
	ResolvedAt *time.Time          `json:"resolved_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
