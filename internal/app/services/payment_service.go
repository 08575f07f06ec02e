package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sipstack/vend-core/internal/app/pkg"
	"github.com/sipstack/vend-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PaymentLimits bounds a single transaction amount at the system level.
type PaymentLimits struct {
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
}

var defaultPaymentLimits = PaymentLimits{
	MinAmount: decimal.NewFromInt(1),
	MaxAmount: decimal.NewFromInt(100000),
}

const merchantTxnIDMaxLen = 38

// PaymentService drives order -> payment -> voucher issuance across the two
// racing input channels, gateway webhook and client status poll. Exactly one
// voucher is created per order: the PENDING -> COMPLETED transition is an
// atomic conditional update and the loser returns the winner's result.
type PaymentService struct {
	db             *gorm.DB
	validator      *infrastructures.Validator
	client         *infrastructures.GatewayClient
	checksum       *ChecksumService
	voucherService *VoucherService
	limits         PaymentLimits
}

func NewPaymentService(
	db *gorm.DB,
	validator *infrastructures.Validator,
	client *infrastructures.GatewayClient,
	checksum *ChecksumService,
	voucherService *VoucherService,
) *PaymentService {
	return &PaymentService{
		db:             db,
		validator:      validator,
		client:         client,
		checksum:       checksum,
		voucherService: voucherService,
		limits:         defaultPaymentLimits,
	}
}

// MintMerchantTransactionID derives a gateway-facing id from the order id,
// the current time and a random suffix, truncated to the gateway's 38-char
// limit. Charset stays within [a-zA-Z0-9_-].
func MintMerchantTransactionID(orderID uuid.UUID) string {
	compact := strings.ReplaceAll(orderID.String(), "-", "")
	id := fmt.Sprintf("VND%s%d%s", compact[:12], time.Now().UnixMilli(), pkg.RandomNumberString(4))
	if len(id) > merchantTxnIDMaxLen {
		id = id[:merchantTxnIDMaxLen]
	}
	return id
}

// newRefundTransaction builds the REFUND row for an original payment. The
// refund keeps the gateway's transaction id for the payment being refunded,
// so payments and refunds share one id namespace in that column and a query
// for a gateway transaction id returns the payment and all its refunds.
func newRefundTransaction(original *models.Transaction, req *models.RefundRequest) *models.Transaction {
	return &models.Transaction{
		OrderID:               original.OrderID,
		UserID:                original.UserID,
		Amount:                req.Amount,
		Type:                  models.TransactionTypeRefund,
		Status:                models.TransactionStatusPending,
		MerchantTransactionID: MintMerchantTransactionID(uuid.New()),
		GatewayTransactionID:  &req.GatewayTransactionID,
	}
}

// MapGatewayState maps the gateway's transaction state onto ours.
func MapGatewayState(state models.GatewayState) models.TransactionStatus {
	switch state {
	case models.GatewayStateCompleted:
		return models.TransactionStatusSuccess
	case models.GatewayStateFailed, models.GatewayStateCancelled:
		return models.TransactionStatusFailed
	default:
		return models.TransactionStatusPending
	}
}

func (s *PaymentService) validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(s.limits.MinAmount) {
		return errors.NewBadRequestError(fmt.Sprintf("Amount must be at least %s", s.limits.MinAmount.String()))
	}
	if amount.GreaterThan(s.limits.MaxAmount) {
		return errors.NewBadRequestError(fmt.Sprintf("Amount cannot exceed %s", s.limits.MaxAmount.String()))
	}
	return nil
}

func (s *PaymentService) requireGateway() error {
	if !s.client.Enabled() {
		return errors.NewConfigurationError("Payment gateway is not configured")
	}
	return nil
}

// InitiatePayment creates the order and its PENDING payment transaction,
// then submits the signed payment request. The order and transaction rows
// commit before the gateway call, so a timeout leaves a PENDING transaction
// that CheckPaymentStatus or the webhook reconciles later; the merchant
// transaction id is never regenerated for the same order.
func (s *PaymentService) InitiatePayment(ctx context.Context, userID uuid.UUID, req *models.PaymentInitiateRequest) (*models.PaymentInitiateResponse, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.validateAmount(req.Amount); err != nil {
		return nil, err
	}

	var order *models.Order
	var transaction *models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order = &models.Order{
			UserID:        userID,
			PackageCode:   req.PackageCode,
			TotalAmount:   req.Amount,
			TotalDrinks:   req.TotalDrinks,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusPending,
		}
		if err := tx.Create(order).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create order")
		}

		transaction = &models.Transaction{
			OrderID:               &order.ID,
			UserID:                userID,
			Amount:                req.Amount,
			Type:                  models.TransactionTypePayment,
			Status:                models.TransactionStatusPending,
			MerchantTransactionID: MintMerchantTransactionID(order.ID),
		}
		if err := tx.Create(transaction).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create payment transaction")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	payReq := models.GatewayPayRequest{
		MerchantID:            s.client.Config.MerchantID,
		MerchantTransactionID: transaction.MerchantTransactionID,
		MerchantUserID:        userID.String(),
		Amount:                req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		RedirectURL:           s.client.Config.RedirectURL,
		CallbackURL:           s.client.Config.CallbackURL,
		PaymentInstrument:     models.GatewayPaymentInstrument{Type: "PAY_PAGE"},
	}

	gatewayResp, raw, err := s.submitPay(ctx, payReq)
	if err != nil {
		return nil, err
	}

	// Store the raw acknowledgment for reconciliation.
	rawStr := string(raw)
	updates := map[string]interface{}{"gateway_response": rawStr}
	if gatewayResp.Data != nil && gatewayResp.Data.TransactionID != "" {
		updates["gateway_transaction_id"] = gatewayResp.Data.TransactionID
	}
	if err := s.db.Model(transaction).Updates(updates).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to store gateway acknowledgment")
	}

	response := &models.PaymentInitiateResponse{
		Order:                 order,
		Transaction:           transaction,
		MerchantTransactionID: transaction.MerchantTransactionID,
	}
	if gatewayResp.Data != nil && gatewayResp.Data.InstrumentResponse != nil &&
		gatewayResp.Data.InstrumentResponse.RedirectInfo != nil {
		response.RedirectURL = &gatewayResp.Data.InstrumentResponse.RedirectInfo.URL
	}

	return response, nil
}

func (s *PaymentService) submitPay(ctx context.Context, payReq models.GatewayPayRequest) (*models.GatewayResponse, []byte, error) {
	encoded, err := s.checksum.EncodePayload(payReq)
	if err != nil {
		return nil, nil, errors.NewInternalServerError(err, "Failed to encode payment payload")
	}

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return nil, nil, errors.NewInternalServerError(err, "Failed to marshal payment request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.client.GetFullURL(GatewayPayEndpoint), bytes.NewBuffer(body))
	if err != nil {
		return nil, nil, errors.NewInternalServerError(err, "Failed to create gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", s.checksum.Sign(encoded, GatewayPayEndpoint))

	return s.doGatewayRequest(httpReq)
}

func (s *PaymentService) doGatewayRequest(httpReq *http.Request) (*models.GatewayResponse, []byte, error) {
	resp, err := s.client.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, nil, errors.NewGatewayError("UNREACHABLE", err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.NewGatewayError("UNREADABLE", err.Error())
	}

	var gatewayResp models.GatewayResponse
	if err := json.Unmarshal(raw, &gatewayResp); err != nil {
		return nil, nil, errors.NewGatewayError("MALFORMED", fmt.Sprintf("status %d, body: %s", resp.StatusCode, string(raw)))
	}

	if !gatewayResp.Success && resp.StatusCode != http.StatusOK {
		return nil, nil, errors.NewGatewayError(gatewayResp.Code, gatewayResp.Message)
	}

	return &gatewayResp, raw, nil
}

// CheckPaymentStatus polls the gateway for a merchant transaction and
// applies the settlement, racing fairly with the webhook path.
func (s *PaymentService) CheckPaymentStatus(ctx context.Context, merchantTxnID string) (*models.SettlementResult, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}

	transaction, err := s.getTransactionByMerchantID(merchantTxnID)
	if err != nil {
		return nil, err
	}

	statusPath := fmt.Sprintf("%s/%s/%s", GatewayStatusEndpoint, s.client.Config.MerchantID, merchantTxnID)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", s.client.GetFullURL(statusPath), nil)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", s.checksum.Sign("", statusPath))

	gatewayResp, raw, err := s.doGatewayRequest(httpReq)
	if err != nil {
		return nil, err
	}

	state := models.GatewayStatePending
	gatewayTxnID := ""
	if gatewayResp.Data != nil {
		state = gatewayResp.Data.State
		gatewayTxnID = gatewayResp.Data.TransactionID
	}

	return s.applySettlement(transaction, state, gatewayTxnID, gatewayResp.Code, string(raw))
}

// HandleWebhook verifies and applies a gateway callback. A bad signature is
// the only error returned to the caller: forged callbacks are rejected and
// never retried. Every internal failure after verification is logged for
// manual reconciliation and swallowed, so the gateway always receives an
// acknowledgment and stops retrying.
func (s *PaymentService) HandleWebhook(signatureHeader string, rawBody []byte) (*models.SettlementResult, error) {
	var webhookBody models.GatewayWebhookBody
	if err := json.Unmarshal(rawBody, &webhookBody); err != nil || webhookBody.Response == "" {
		return nil, errors.NewSignatureInvalidError("unparseable webhook body")
	}

	if ok, reason := s.checksum.VerifyCallback(signatureHeader, webhookBody.Response); !ok {
		return nil, errors.NewSignatureInvalidError(reason)
	}

	var gatewayResp models.GatewayResponse
	if err := s.checksum.DecodePayload(webhookBody.Response, &gatewayResp); err != nil {
		logrus.WithError(err).Warn("webhook payload could not be decoded")
		return nil, nil
	}

	if gatewayResp.Data == nil || gatewayResp.Data.MerchantTransactionID == "" {
		logrus.Warn("webhook payload missing merchant transaction id")
		return nil, nil
	}

	transaction, err := s.getTransactionByMerchantID(gatewayResp.Data.MerchantTransactionID)
	if err != nil {
		logrus.WithError(err).WithField("merchant_txn_id", gatewayResp.Data.MerchantTransactionID).
			Error("webhook references unknown transaction")
		return nil, nil
	}

	result, err := s.applySettlement(transaction, gatewayResp.Data.State,
		gatewayResp.Data.TransactionID, gatewayResp.Code, webhookBody.Response)
	if err != nil {
		logrus.WithError(err).WithField("merchant_txn_id", transaction.MerchantTransactionID).
			Error("webhook settlement failed, needs manual reconciliation")
		return nil, nil
	}

	return result, nil
}

// applySettlement maps the gateway state onto the transaction and, on
// success, runs the idempotent issuance step: the order's PENDING ->
// COMPLETED transition is a conditional update, so of two racing callers
// exactly one issues the voucher and the other returns the existing one.
func (s *PaymentService) applySettlement(transaction *models.Transaction, state models.GatewayState, gatewayTxnID, gatewayCode, raw string) (*models.SettlementResult, error) {
	mapped := MapGatewayState(state)
	now := time.Now()

	result := &models.SettlementResult{Transaction: transaction}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.Status == models.TransactionStatusPending && mapped != models.TransactionStatusPending {
			updates := map[string]interface{}{
				"status":           mapped,
				"gateway_response": raw,
				"processed_at":     &now,
			}
			if gatewayTxnID != "" {
				updates["gateway_transaction_id"] = gatewayTxnID
			}
			if mapped == models.TransactionStatusFailed {
				updates["failure_reason"] = gatewayCode
			}

			if err := tx.Model(&models.Transaction{}).
				Where("id = ? AND status = ?", transaction.ID, models.TransactionStatusPending).
				Updates(updates).Error; err != nil {
				return errors.NewInternalServerError(err, "Failed to update transaction status")
			}

			transaction.Status = mapped
			transaction.ProcessedAt = &now
			if gatewayTxnID != "" {
				transaction.GatewayTransactionID = &gatewayTxnID
			}
		}

		if transaction.OrderID == nil {
			return nil
		}

		var order models.Order
		if err := tx.Where("id = ?", *transaction.OrderID).First(&order).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to load order")
		}
		result.Order = &order

		// A refund settling through the webhook or status poll marks the
		// order refunded; it never touches order status or issues vouchers.
		if transaction.Type == models.TransactionTypeRefund {
			if mapped == models.TransactionStatusSuccess {
				if err := tx.Model(&models.Order{}).
					Where("id = ?", order.ID).
					Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
					return errors.NewInternalServerError(err, "Failed to mark order refunded")
				}
				order.PaymentStatus = models.PaymentStatusRefunded
			}
			return nil
		}

		switch mapped {
		case models.TransactionStatusSuccess:
			guard := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
				Updates(map[string]interface{}{
					"status":         models.OrderStatusCompleted,
					"payment_status": models.PaymentStatusPaid,
					"updated_at":     now,
				})
			if guard.Error != nil {
				return errors.NewInternalServerError(guard.Error, "Failed to complete order")
			}

			if guard.RowsAffected == 0 {
				// Lost the race: the other channel already settled this
				// order. Return its voucher instead of erroring.
				voucher, err := s.voucherService.GetVoucherByOrder(order.ID)
				if err != nil {
					return err
				}
				result.Voucher = voucher
				result.Order.Status = models.OrderStatusCompleted
				result.Order.PaymentStatus = models.PaymentStatusPaid
				return nil
			}

			order.Status = models.OrderStatusCompleted
			order.PaymentStatus = models.PaymentStatusPaid

			voucher, err := s.voucherService.IssueForOrder(tx, &order)
			if err != nil {
				return err
			}
			result.Voucher = voucher

		case models.TransactionStatusFailed:
			guard := tx.Model(&models.Order{}).
				Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
				Updates(map[string]interface{}{
					"status":         models.OrderStatusCancelled,
					"payment_status": models.PaymentStatusFailed,
					"updated_at":     now,
				})
			if guard.Error != nil {
				return errors.NewInternalServerError(guard.Error, "Failed to cancel order")
			}
			if guard.RowsAffected > 0 {
				order.Status = models.OrderStatusCancelled
				order.PaymentStatus = models.PaymentStatusFailed
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ProcessRefund refunds part or all of a settled payment. The refund is
// signed with the refund endpoint constant and recorded as a REFUND
// transaction referencing the original through the gateway transaction id.
func (s *PaymentService) ProcessRefund(ctx context.Context, req *models.RefundRequest) (*models.Transaction, error) {
	if err := s.requireGateway(); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var original models.Transaction
	err := s.db.Where("gateway_transaction_id = ? AND type = ?", req.GatewayTransactionID, models.TransactionTypePayment).
		First(&original).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Original payment transaction not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get original transaction")
	}

	if original.Status != models.TransactionStatusSuccess {
		return nil, errors.NewInvalidStateError("Only successful payments can be refunded")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) || req.Amount.GreaterThan(original.Amount) {
		return nil, errors.NewBadRequestError("Refund amount must be positive and not exceed the original payment")
	}

	refund := newRefundTransaction(&original, req)
	if err := s.db.Create(refund).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create refund transaction")
	}

	refundReq := models.GatewayRefundRequest{
		MerchantID:            s.client.Config.MerchantID,
		MerchantUserID:        original.UserID.String(),
		OriginalTransactionID: req.GatewayTransactionID,
		MerchantTransactionID: refund.MerchantTransactionID,
		Amount:                req.Amount.Mul(decimal.NewFromInt(100)).IntPart(),
		CallbackURL:           s.client.Config.CallbackURL,
	}

	encoded, err := s.checksum.EncodePayload(refundReq)
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to encode refund payload")
	}

	body, err := json.Marshal(map[string]string{"request": encoded})
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to marshal refund request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.client.GetFullURL(GatewayRefundEndpoint), bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create gateway request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-VERIFY", s.checksum.Sign(encoded, GatewayRefundEndpoint))

	gatewayResp, raw, err := s.doGatewayRequest(httpReq)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	mapped := models.TransactionStatusPending
	if gatewayResp.Data != nil {
		mapped = MapGatewayState(gatewayResp.Data.State)
	}
	rawStr := string(raw)

	updates := map[string]interface{}{
		"status":           mapped,
		"gateway_response": rawStr,
		"processed_at":     &now,
	}
	if err := s.db.Model(refund).Updates(updates).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update refund transaction")
	}

	if mapped == models.TransactionStatusSuccess && original.OrderID != nil {
		if err := s.db.Model(&models.Order{}).
			Where("id = ?", *original.OrderID).
			Update("payment_status", models.PaymentStatusRefunded).Error; err != nil {
			return nil, errors.NewInternalServerError(err, "Failed to mark order refunded")
		}
	}

	return refund, nil
}

func (s *PaymentService) getTransactionByMerchantID(merchantTxnID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := s.db.Where("merchant_transaction_id = ?", merchantTxnID).First(&transaction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Transaction not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get transaction")
	}
	return &transaction, nil
}
