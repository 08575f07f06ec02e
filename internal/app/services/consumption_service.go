package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/infrastructures"
	"gorm.io/gorm"
)

// ConsumptionService orchestrates one atomic scan-and-dispense: machine,
// session and voucher validation followed by a ledger debit plus an
// immutable consumption record in a single database transaction.
type ConsumptionService struct {
	db             *gorm.DB
	validator      *infrastructures.Validator
	voucherService *VoucherService
	machineService *MachineService
	sessionWindow  time.Duration
}

func NewConsumptionService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	voucherService *VoucherService,
	machineService *MachineService,
) *ConsumptionService {
	return &ConsumptionService{
		db:             db,
		validator:      validator,
		voucherService: voucherService,
		machineService: machineService,
		sessionWindow:  time.Duration(infrastructures.Config.SESSION_WINDOW_MIN) * time.Minute,
	}
}

// ProcessConsumption runs the scan state machine. On success exactly one
// consumption row exists for the session; the machine polls for it to learn
// it may dispense. A version conflict on the voucher surfaces as 409 and
// the client may resubmit the scan.
func (s *ConsumptionService) ProcessConsumption(req *models.VoucherConsumeRequest, userID uuid.UUID) (*models.Consumption, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	payload := pkg.DecodeQR(req.QRPayload)
	if payload.SessionID == "" {
		return nil, errors.NewBadRequestError("QR payload does not contain a dispensing session")
	}

	machine, err := s.machineService.ValidateMachineQR(payload.MachineQRCode)
	if err != nil {
		return nil, err
	}

	if !pkg.IsValidSessionID(payload.SessionID) {
		return nil, errors.NewBadRequestError("Malformed session ID")
	}
	if pkg.IsSessionExpired(payload.SessionID, s.sessionWindow) {
		return nil, errors.NewExpiredError("Dispensing session has expired")
	}

	voucher, err := s.voucherService.ValidateForConsumption(req.VoucherID, userID, req.Quantity)
	if err != nil {
		return nil, err
	}

	var consumption *models.Consumption
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Replay guard: a session that already produced a completed
		// dispense must never debit again, regardless of voucher state.
		// The check gives the common case a clear error; the unique
		// COMPLETED-session index below is what closes the race.
		var replayCount int64
		err := tx.Model(&models.Consumption{}).
			Where("session_id = ? AND status = ?", payload.SessionID, models.ConsumptionStatusCompleted).
			Count(&replayCount).Error
		if err != nil {
			return errors.NewInternalServerError(err, "Failed to check session history")
		}
		if replayCount > 0 {
			return errors.NewInvalidStateError("Dispensing session has already been used")
		}

		debited, err := s.voucherService.Debit(tx, voucher, req.Quantity)
		if err != nil {
			return err
		}

		consumption = &models.Consumption{
			VoucherID:              voucher.ID,
			SessionID:              payload.SessionID,
			MachineID:              machine.ID,
			MachineLocation:        machine.Location,
			Quantity:               req.Quantity,
			PreConsumptionBalance:  voucher.RemainingDrinks(),
			PostConsumptionBalance: debited.RemainingDrinks(),
			VoucherVersion:         debited.Version,
			Status:                 models.ConsumptionStatusCompleted,
		}
		if payload.DrinkType != "" {
			consumption.DrinkType = &payload.DrinkType
		}
		if payload.DrinkFlavour != "" {
			consumption.DrinkFlavour = &payload.DrinkFlavour
		}

		if err := tx.Create(consumption).Error; err != nil {
			if err == gorm.ErrDuplicatedKey {
				return errors.NewInvalidStateError("Dispensing session has already been used")
			}
			return errors.NewInternalServerError(err, "Failed to record consumption")
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return consumption, nil
}

// GetConsumptionBySession is the machine's dispense poll: the presence of a
// completed row for the session means it may pour.
func (s *ConsumptionService) GetConsumptionBySession(sessionID string) (*models.Consumption, error) {
	if !pkg.IsValidSessionID(sessionID) {
		return nil, errors.NewBadRequestError("Malformed session ID")
	}

	var consumption models.Consumption
	err := s.db.Where("session_id = ? AND status = ?", sessionID, models.ConsumptionStatusCompleted).
		First(&consumption).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("No completed consumption for session")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get consumption")
	}

	return &consumption, nil
}

// GetConsumptionsByVoucher returns the append-only dispense history.
func (s *ConsumptionService) GetConsumptionsByVoucher(voucherID string, userID uuid.UUID, pagination *models.PaginationRequest) (*models.Pagination[[]models.Consumption], error) {
	voucher, err := s.voucherService.GetVoucher(voucherID)
	if err != nil {
		return nil, err
	}
	if voucher.UserID != userID {
		return nil, errors.NewNotFoundError("Voucher not found")
	}

	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}
	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.Consumption{}).Where("voucher_id = ?", voucher.ID).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count consumptions")
	}

	var consumptions []models.Consumption
	query := s.db.Where("voucher_id = ?", voucher.ID).Order("consumed_at DESC").Limit(pagination.Limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&consumptions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get consumptions")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Consumption]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      consumptions,
	}, nil
}
