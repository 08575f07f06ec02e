package services

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapGatewayState(t *testing.T) {
	tests := []struct {
		state  models.GatewayState
		status models.TransactionStatus
	}{
		{models.GatewayStateCompleted, models.TransactionStatusSuccess},
		{models.GatewayStateFailed, models.TransactionStatusFailed},
		{models.GatewayStateCancelled, models.TransactionStatusFailed},
		{models.GatewayStatePending, models.TransactionStatusPending},
		{models.GatewayState("SOMETHING_NEW"), models.TransactionStatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.status, MapGatewayState(tt.state))
		})
	}
}

func TestMintMerchantTransactionID(t *testing.T) {
	charset := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	orderID := uuid.New()

	id := MintMerchantTransactionID(orderID)

	assert.LessOrEqual(t, len(id), merchantTxnIDMaxLen)
	assert.True(t, charset.MatchString(id))
	assert.Contains(t, id, "VND")

	// Ids for the same order still differ between mints.
	assert.NotEqual(t, id, MintMerchantTransactionID(orderID))
}

func TestNewRefundTransaction(t *testing.T) {
	orderID := uuid.New()
	gatewayTxnID := "GT987654321"
	original := &models.Transaction{
		ID:                    uuid.New(),
		OrderID:               &orderID,
		UserID:                uuid.New(),
		Amount:                decimal.NewFromInt(500),
		Type:                  models.TransactionTypePayment,
		Status:                models.TransactionStatusSuccess,
		MerchantTransactionID: "VND1234567890",
		GatewayTransactionID:  &gatewayTxnID,
	}
	req := &models.RefundRequest{
		GatewayTransactionID: gatewayTxnID,
		Amount:               decimal.NewFromInt(200),
	}

	refund := newRefundTransaction(original, req)

	assert.Equal(t, models.TransactionTypeRefund, refund.Type)
	assert.Equal(t, models.TransactionStatusPending, refund.Status)
	assert.Equal(t, original.OrderID, refund.OrderID)
	assert.Equal(t, original.UserID, refund.UserID)
	assert.True(t, refund.Amount.Equal(req.Amount))

	// The refund shares the gateway's id namespace with the payment it
	// refunds: querying by gateway transaction id must return both rows.
	require.NotNil(t, refund.GatewayTransactionID)
	assert.Equal(t, gatewayTxnID, *refund.GatewayTransactionID)
	assert.NotEqual(t, original.MerchantTransactionID, *refund.GatewayTransactionID)
	assert.NotEqual(t, original.MerchantTransactionID, refund.MerchantTransactionID)
}
