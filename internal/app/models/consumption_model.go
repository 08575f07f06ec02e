package models

import (
	"time"

	"github.com/google/uuid"
)

type ConsumptionStatus string

const (
	ConsumptionStatusCompleted ConsumptionStatus = "COMPLETED"
	ConsumptionStatusCancelled ConsumptionStatus = "CANCELLED"
)

// Consumption is the immutable audit record of one successful dispense.
// Rows are never updated or deleted; the machine polls by SessionID to
// learn it may pour. The partial unique index on SessionID is the replay
// guard: at most one COMPLETED row can ever exist per session, enforced by
// the store rather than by a read-then-insert check.
type Consumption struct {
	ID                     uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VoucherID              uuid.UUID         `json:"voucher_id" gorm:"type:uuid;not null;index"`
	SessionID              string            `json:"session_id" gorm:"type:varchar(40);not null;uniqueIndex:uniq_consumptions_completed_session,where:status = 'COMPLETED'"`
	MachineID              uuid.UUID         `json:"machine_id" gorm:"type:uuid;not null"`
	MachineLocation        *string           `json:"machine_location,omitempty" gorm:"type:varchar(255)"`
	DrinkType              *string           `json:"drink_type,omitempty" gorm:"type:varchar(50)"`
	DrinkFlavour           *string           `json:"drink_flavour,omitempty" gorm:"type:varchar(50)"`
	Quantity               int               `json:"quantity" gorm:"not null"`
	PreConsumptionBalance  int               `json:"pre_consumption_balance" gorm:"not null"`
	PostConsumptionBalance int               `json:"post_consumption_balance" gorm:"not null"`
	VoucherVersion         int64             `json:"voucher_version" gorm:"not null"`
	Status                 ConsumptionStatus `json:"status" gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	ConsumedAt             time.Time         `json:"consumed_at" gorm:"autoCreateTime"`
}
