package services

import (
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Voucher{},
		&models.Order{},
		&models.Transaction{},
		&models.Consumption{},
	))

	return db
}

func newTestVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db, validityDays: 90}
}

func TestDebitConcurrentSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVoucherService(db)

	voucher := &models.Voucher{
		UserID:         uuid.New(),
		TotalDrinks:    10,
		ConsumedDrinks: 9,
		Status:         models.VoucherStatusActive,
	}
	require.NoError(t, db.Create(voucher).Error)

	// Two debits against the same snapshot: combined quantity exceeds the
	// remaining balance, so exactly one may win.
	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot := *voucher
			_, results[i] = svc.Debit(db, &snapshot, 1)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		appErr, ok := err.(*errors.AppError)
		require.True(t, ok)
		assert.Equal(t, errors.CodeConflict, appErr.Code)
	}
	assert.Equal(t, 1, winners)

	var final models.Voucher
	require.NoError(t, db.Where("id = ?", voucher.ID).First(&final).Error)
	assert.Equal(t, 10, final.ConsumedDrinks)
	assert.Equal(t, models.VoucherStatusExhausted, final.Status)
	assert.Equal(t, int64(1), final.Version)
}

func TestSettlementRaceIssuesOneVoucher(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVoucherService(db)
	payments := &PaymentService{db: db, voucherService: svc, limits: defaultPaymentLimits}

	order := &models.Order{
		UserID:        uuid.New(),
		TotalAmount:   decimal.NewFromInt(150),
		TotalDrinks:   10,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	require.NoError(t, db.Create(order).Error)

	transaction := &models.Transaction{
		OrderID:               &order.ID,
		UserID:                order.UserID,
		Amount:                order.TotalAmount,
		Type:                  models.TransactionTypePayment,
		Status:                models.TransactionStatusPending,
		MerchantTransactionID: MintMerchantTransactionID(order.ID),
	}
	require.NoError(t, db.Create(transaction).Error)

	// Webhook and status poll both observe COMPLETED at the same time.
	var wg sync.WaitGroup
	results := make([]*models.SettlementResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshot := *transaction
			results[i], errs[i] = payments.applySettlement(&snapshot, models.GatewayStateCompleted, "GT-RACE-1", "PAYMENT_SUCCESS", "{}")
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	require.NotNil(t, results[0].Voucher)
	require.NotNil(t, results[1].Voucher)

	// Both callers reference the one voucher the winner issued.
	assert.Equal(t, results[0].Voucher.ID, results[1].Voucher.ID)

	var voucherCount int64
	require.NoError(t, db.Model(&models.Voucher{}).Where("order_id = ?", order.ID).Count(&voucherCount).Error)
	assert.Equal(t, int64(1), voucherCount)

	var final models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&final).Error)
	assert.Equal(t, models.OrderStatusCompleted, final.Status)
	assert.Equal(t, models.PaymentStatusPaid, final.PaymentStatus)
}

func TestCompletedSessionUniqueAcrossVouchers(t *testing.T) {
	db := setupTestDB(t)

	sessionID := pkg.NewSessionID()
	machineID := uuid.New()

	first := &models.Consumption{
		VoucherID:              uuid.New(),
		SessionID:              sessionID,
		MachineID:              machineID,
		Quantity:               1,
		PreConsumptionBalance:  10,
		PostConsumptionBalance: 9,
		VoucherVersion:         1,
		Status:                 models.ConsumptionStatusCompleted,
	}
	require.NoError(t, db.Create(first).Error)

	// A second COMPLETED row for the same session is rejected by the store
	// even against a different voucher.
	second := &models.Consumption{
		VoucherID:              uuid.New(),
		SessionID:              sessionID,
		MachineID:              machineID,
		Quantity:               1,
		PreConsumptionBalance:  5,
		PostConsumptionBalance: 4,
		VoucherVersion:         1,
		Status:                 models.ConsumptionStatusCompleted,
	}
	err := db.Create(second).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// Cancelled rows do not occupy the session.
	cancelled := &models.Consumption{
		VoucherID:              uuid.New(),
		SessionID:              sessionID,
		MachineID:              machineID,
		Quantity:               1,
		PreConsumptionBalance:  5,
		PostConsumptionBalance: 5,
		VoucherVersion:         1,
		Status:                 models.ConsumptionStatusCancelled,
	}
	assert.NoError(t, db.Create(cancelled).Error)
}

func TestRefundSettlementMarksOrderRefunded(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestVoucherService(db)
	payments := &PaymentService{db: db, voucherService: svc, limits: defaultPaymentLimits}

	order := &models.Order{
		UserID:        uuid.New(),
		TotalAmount:   decimal.NewFromInt(150),
		TotalDrinks:   10,
		Status:        models.OrderStatusCompleted,
		PaymentStatus: models.PaymentStatusPaid,
	}
	require.NoError(t, db.Create(order).Error)

	gatewayTxnID := "GT-REFUND-1"
	refund := &models.Transaction{
		OrderID:               &order.ID,
		UserID:                order.UserID,
		Amount:                decimal.NewFromInt(150),
		Type:                  models.TransactionTypeRefund,
		Status:                models.TransactionStatusPending,
		MerchantTransactionID: MintMerchantTransactionID(uuid.New()),
		GatewayTransactionID:  &gatewayTxnID,
	}
	require.NoError(t, db.Create(refund).Error)

	result, err := payments.applySettlement(refund, models.GatewayStateCompleted, gatewayTxnID, "REFUND_SUCCESS", "{}")
	require.NoError(t, err)
	assert.Nil(t, result.Voucher)

	var finalOrder models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&finalOrder).Error)
	assert.Equal(t, models.PaymentStatusRefunded, finalOrder.PaymentStatus)
	assert.Equal(t, models.OrderStatusCompleted, finalOrder.Status)

	var finalRefund models.Transaction
	require.NoError(t, db.Where("id = ?", refund.ID).First(&finalRefund).Error)
	assert.Equal(t, models.TransactionStatusSuccess, finalRefund.Status)

	var voucherCount int64
	require.NoError(t, db.Model(&models.Voucher{}).Where("order_id = ?", order.ID).Count(&voucherCount).Error)
	assert.Equal(t, int64(0), voucherCount)
}
