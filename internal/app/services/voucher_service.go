package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/infrastructures"
	"gorm.io/gorm"
)

const (
	minConsumptionQuantity = 1
	maxConsumptionQuantity = 10
)

// VoucherService is the single authority for a voucher's drink balance.
// Debits go through a conditional update on the version column so that
// concurrent scans against the same voucher cannot act on the same
// balance snapshot.
type VoucherService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	validityDays int
}

func NewVoucherService(db *gorm.DB, validator *infrastructures.Validator) *VoucherService {
	return &VoucherService{
		db:           db,
		validator:    validator,
		validityDays: infrastructures.Config.VOUCHER_VALIDITY_DAYS,
	}
}

func (s *VoucherService) GetVoucher(voucherID string) (*models.Voucher, error) {
	voucherUUID, err := uuid.Parse(voucherID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid voucher ID format")
	}

	var voucher models.Voucher
	err = s.db.Where("id = ?", voucherUUID).First(&voucher).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Voucher not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get voucher")
	}

	return &voucher, nil
}

func (s *VoucherService) GetVouchersByUser(userID uuid.UUID, pagination *models.PaginationRequest) (*models.Pagination[[]models.Voucher], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.Voucher{}).Where("user_id = ?", userID).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count vouchers")
	}

	var vouchers []models.Voucher
	query := s.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(pagination.Limit)
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&vouchers).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get vouchers")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Voucher]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      vouchers,
	}, nil
}

// ValidateForConsumption checks ownership, state, expiry, quantity bounds
// and balance for a requested debit. It performs no writes; the caller must
// still expect a conflict at debit time.
func (s *VoucherService) ValidateForConsumption(voucherID string, userID uuid.UUID, quantity int) (*models.Voucher, error) {
	if quantity < minConsumptionQuantity || quantity > maxConsumptionQuantity {
		return nil, errors.NewInvalidQuantityError("Quantity must be between 1 and 10")
	}

	voucher, err := s.GetVoucher(voucherID)
	if err != nil {
		return nil, err
	}

	if voucher.UserID != userID {
		return nil, errors.NewNotFoundError("Voucher not found")
	}

	if voucher.Status != models.VoucherStatusActive {
		return nil, errors.NewInvalidStateError("Voucher is not active")
	}

	if voucher.IsExpired(time.Now()) {
		return nil, errors.NewExpiredError("Voucher has expired")
	}

	if voucher.RemainingDrinks() < quantity {
		return nil, errors.NewInsufficientBalanceError("Voucher has insufficient drink balance")
	}

	return voucher, nil
}

// Debit applies a consumption of qty drinks against the voucher snapshot
// the caller validated. The update is conditional on the snapshot's
// version; zero rows affected means another debit won the race and the
// caller must re-validate before retrying. Runs inside the caller's
// transaction so the debit and the consumption record commit together.
func (s *VoucherService) Debit(tx *gorm.DB, voucher *models.Voucher, quantity int) (*models.Voucher, error) {
	now := time.Now()
	newConsumed := voucher.ConsumedDrinks + quantity
	newStatus := voucher.NextStatusAfterDebit(quantity)

	firstUsedAt := voucher.FirstUsedAt
	if firstUsedAt == nil {
		firstUsedAt = &now
	}

	result := tx.Model(&models.Voucher{}).
		Where("id = ? AND version = ?", voucher.ID, voucher.Version).
		Updates(map[string]interface{}{
			"consumed_drinks": newConsumed,
			"status":          newStatus,
			"is_activated":    true,
			"first_used_at":   firstUsedAt,
			"version":         voucher.Version + 1,
			"updated_at":      now,
		})

	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to debit voucher")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError("Voucher was modified concurrently, please retry")
	}

	updated := *voucher
	updated.ConsumedDrinks = newConsumed
	updated.Status = newStatus
	updated.IsActivated = true
	updated.FirstUsedAt = firstUsedAt
	updated.Version = voucher.Version + 1
	updated.UpdatedAt = now

	return &updated, nil
}

// IssueForOrder creates the voucher a settled order entitles the user to.
// Runs inside the settlement transaction, after the order status guard.
func (s *VoucherService) IssueForOrder(tx *gorm.DB, order *models.Order) (*models.Voucher, error) {
	expiryDate := time.Now().AddDate(0, 0, s.validityDays)

	voucher := &models.Voucher{
		UserID:      order.UserID,
		OrderID:     &order.ID,
		TotalDrinks: order.TotalDrinks,
		Status:      models.VoucherStatusActive,
		ExpiryDate:  &expiryDate,
	}

	if err := tx.Create(voucher).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to issue voucher")
	}

	return voucher, nil
}

// GetVoucherByOrder returns the voucher issued for an order, used by the
// settlement loser to report the winner's result.
func (s *VoucherService) GetVoucherByOrder(orderID uuid.UUID) (*models.Voucher, error) {
	var voucher models.Voucher
	err := s.db.Where("order_id = ?", orderID).First(&voucher).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Voucher not found for order")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get voucher")
	}

	return &voucher, nil
}

// ExpireOverdueVouchers flips ACTIVE vouchers whose expiry date has passed.
// Intended to run on a schedule owned by the caller.
func (s *VoucherService) ExpireOverdueVouchers() error {
	err := s.db.Model(&models.Voucher{}).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date < ?", models.VoucherStatusActive, time.Now()).
		Update("status", models.VoucherStatusExpired).Error

	if err != nil {
		return errors.NewInternalServerError(err, "Failed to expire vouchers")
	}

	return nil
}
