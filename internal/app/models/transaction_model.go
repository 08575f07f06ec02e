package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSuccess   TransactionStatus = "SUCCESS"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
	TransactionStatusRefunded  TransactionStatus = "REFUNDED"
)

// Transaction records one exchange with the payment gateway. Exactly one
// PAYMENT transaction is created per order; REFUND transactions reference
// the original through GatewayTransactionID. OrderID is nullable because a
// refund is tied only to the prior payment transaction.
type Transaction struct {
	ID                    uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID               *uuid.UUID        `json:"order_id,omitempty" gorm:"type:uuid;index"`
	UserID                uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	Amount                decimal.Decimal   `json:"amount" gorm:"type:decimal(18,2);not null"`
	Type                  TransactionType   `json:"type" gorm:"type:varchar(20);not null"`
	Status                TransactionStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	MerchantTransactionID string            `json:"merchant_transaction_id" gorm:"type:varchar(38);uniqueIndex;not null"`
	GatewayTransactionID  *string           `json:"gateway_transaction_id,omitempty" gorm:"type:varchar(100);index"`
	GatewayResponse       *string           `json:"-" gorm:"type:text"`
	FailureReason         *string           `json:"failure_reason,omitempty" gorm:"type:text"`
	ProcessedAt           *time.Time        `json:"processed_at,omitempty"`
	CreatedAt             time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

type RefundRequest struct {
	GatewayTransactionID string          `json:"gateway_transaction_id" validate:"required,max=100"`
	Amount               decimal.Decimal `json:"amount" validate:"required"`
	Reason               *string         `json:"reason,omitempty" validate:"omitempty,max=500"`
}
