package models

import (
	"time"

	"github.com/google/uuid"
)

type VoucherStatus string

const (
	VoucherStatusActive    VoucherStatus = "ACTIVE"
	VoucherStatusExhausted VoucherStatus = "EXHAUSTED"
	VoucherStatusExpired   VoucherStatus = "EXPIRED"
	VoucherStatusSuspended VoucherStatus = "SUSPENDED"
	VoucherStatusCancelled VoucherStatus = "CANCELLED"
)

// Voucher is a prepaid bundle of drinks. ConsumedDrinks only ever grows and
// every debit bumps Version, which is the optimistic-concurrency guard for
// concurrent scans against the same voucher.
type Voucher struct {
	ID             uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	OrderID        *uuid.UUID    `json:"order_id,omitempty" gorm:"type:uuid;uniqueIndex"`
	TotalDrinks    int           `json:"total_drinks" gorm:"not null"`
	ConsumedDrinks int           `json:"consumed_drinks" gorm:"not null;default:0"`
	Status         VoucherStatus `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	IsActivated    bool          `json:"is_activated" gorm:"not null;default:false"`
	FirstUsedAt    *time.Time    `json:"first_used_at,omitempty"`
	ExpiryDate     *time.Time    `json:"expiry_date,omitempty"`
	Version        int64         `json:"version" gorm:"not null;default:0"`
	CreatedAt      time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// RemainingDrinks returns the balance still available for dispensing.
func (v *Voucher) RemainingDrinks() int {
	return v.TotalDrinks - v.ConsumedDrinks
}

// IsExpired reports whether the voucher's expiry date has passed. A nil
// expiry date means the voucher never expires.
func (v *Voucher) IsExpired(now time.Time) bool {
	return v.ExpiryDate != nil && now.After(*v.ExpiryDate)
}

// NextStatusAfterDebit returns the status the voucher moves to once qty
// drinks have been debited: EXHAUSTED exactly when the balance hits zero.
func (v *Voucher) NextStatusAfterDebit(qty int) VoucherStatus {
	if v.ConsumedDrinks+qty == v.TotalDrinks {
		return VoucherStatusExhausted
	}
	return v.Status
}

type VoucherConsumeRequest struct {
	QRPayload string `json:"qr_payload" validate:"required"`
	VoucherID string `json:"voucher_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=10"`
}
