package models

import (
	"time"

	"github.com/google/uuid"
)

// VendingMachine is reference data: the settlement core only ever reads it.
// DispenseKeyHash authenticates the machine on the dispense-poll endpoint.
type VendingMachine struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MachineCode     string    `json:"machine_code" gorm:"type:varchar(50);not null"`
	QRCode          string    `json:"qr_code" gorm:"type:varchar(100);uniqueIndex;not null"`
	Location        *string   `json:"location,omitempty" gorm:"type:varchar(255)"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	IsOnline        bool      `json:"is_online" gorm:"not null;default:false"`
	DispenseKeyHash *string   `json:"-" gorm:"type:varchar(64)"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type SessionIssueRequest struct {
	MachineQRCode string `json:"machine_qr_code" validate:"required,max=100"`
	DrinkType     string `json:"drink_type" validate:"required,max=50"`
	DrinkFlavour  string `json:"drink_flavour" validate:"omitempty,max=50"`
	Price         int64  `json:"price" validate:"required,min=0"`
}

type SessionIssueResponse struct {
	SessionID string    `json:"session_id"`
	QRPayload string    `json:"qr_payload"`
	ExpiresAt time.Time `json:"expires_at"`
}
