package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Order is the purchase intent for a drink package. It transitions to
// COMPLETED/PAID exactly once, by whichever of webhook or status poll
// observes gateway success first.
type Order struct {
	ID            uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	PackageCode   *string         `json:"package_code,omitempty" gorm:"type:varchar(50)"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(18,2);not null"`
	TotalDrinks   int             `json:"total_drinks" gorm:"not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt     time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

type PaymentInitiateRequest struct {
	TotalDrinks int             `json:"total_drinks" validate:"required,min=1"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	PackageCode *string         `json:"package_code,omitempty" validate:"omitempty,max=50"`
}

// PaymentInitiateResponse carries what the client needs to open the gateway
// payment page and later poll for settlement.
type PaymentInitiateResponse struct {
	Order                 *Order       `json:"order"`
	Transaction           *Transaction `json:"transaction"`
	MerchantTransactionID string       `json:"merchant_transaction_id"`
	RedirectURL           *string      `json:"redirect_url,omitempty"`
}

// SettlementResult is returned by both the status poll and the webhook
// paths. Both racing callers reference the same voucher once one of them
// wins the issuance guard.
type SettlementResult struct {
	Order       *Order       `json:"order"`
	Transaction *Transaction `json:"transaction"`
	Voucher     *Voucher     `json:"voucher,omitempty"`
}
