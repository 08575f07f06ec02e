package services

import (
	"time"

	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/infrastructures"
	"github.com/sipstack/vend-core/pkg/machinekey"
	"gorm.io/gorm"
)

type MachineService struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	sessionWindow time.Duration
}

func NewMachineService(db *gorm.DB, validator *infrastructures.Validator) *MachineService {
	return &MachineService{
		db:            db,
		validator:     validator,
		sessionWindow: time.Duration(infrastructures.Config.SESSION_WINDOW_MIN) * time.Minute,
	}
}

func (s *MachineService) GetByQRCode(qrCode string) (*models.VendingMachine, error) {
	var machine models.VendingMachine
	err := s.db.Where("qr_code = ?", qrCode).First(&machine).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Vending machine not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get vending machine")
	}

	return &machine, nil
}

// ValidateMachineQR resolves a machine QR code and checks the machine can
// currently serve: it must exist, be active and be online.
func (s *MachineService) ValidateMachineQR(qrCode string) (*models.VendingMachine, error) {
	machine, err := s.GetByQRCode(qrCode)
	if err != nil {
		return nil, err
	}

	if !machine.IsActive {
		return nil, errors.NewInvalidStateError("Vending machine is not active")
	}
	if !machine.IsOnline {
		return nil, errors.NewInvalidStateError("Vending machine is offline")
	}

	return machine, nil
}

// IssueSession mints a dispensing session for a drink/price combination and
// returns the QR payload the machine displays. Expiry is embedded in the
// session id, so nothing is stored.
func (s *MachineService) IssueSession(req *models.SessionIssueRequest) (*models.SessionIssueResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	machine, err := s.ValidateMachineQR(req.MachineQRCode)
	if err != nil {
		return nil, err
	}

	sessionID := pkg.NewSessionID()
	qrPayload := pkg.EncodeQR(machine.QRCode, sessionID, req.DrinkType, req.DrinkFlavour, req.Price)
	createdAt, _ := pkg.SessionCreatedAt(sessionID)

	return &models.SessionIssueResponse{
		SessionID: sessionID,
		QRPayload: qrPayload,
		ExpiresAt: createdAt.Add(s.sessionWindow),
	}, nil
}

// VerifyDispenseKey authenticates a machine on the dispense-poll endpoint.
func (s *MachineService) VerifyDispenseKey(qrCode, key string) (*models.VendingMachine, error) {
	machine, err := s.GetByQRCode(qrCode)
	if err != nil {
		return nil, err
	}

	if machine.DispenseKeyHash == nil || !machinekey.Verify(key, *machine.DispenseKeyHash) {
		return nil, errors.NewUnauthorizedError("Invalid dispense key")
	}

	return machine, nil
}
