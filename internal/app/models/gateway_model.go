package models

// Gateway transaction states as reported by the payment gateway. They are
// mapped onto TransactionStatus: COMPLETED becomes SUCCESS, FAILED and
// CANCELLED become FAILED, everything else stays PENDING.
type GatewayState string

const (
	GatewayStateCompleted GatewayState = "COMPLETED"
	GatewayStateFailed    GatewayState = "FAILED"
	GatewayStateCancelled GatewayState = "CANCELLED"
	GatewayStatePending   GatewayState = "PENDING"
)

// GatewayPayRequest is the JSON payload for payment initiation. The gateway
// protocol transmits it base64-encoded and signed in the X-VERIFY header.
type GatewayPayRequest struct {
	MerchantID            string                   `json:"merchantId"`
	MerchantTransactionID string                   `json:"merchantTransactionId"`
	MerchantUserID        string                   `json:"merchantUserId"`
	Amount                int64                    `json:"amount"`
	RedirectURL           string                   `json:"redirectUrl,omitempty"`
	CallbackURL           string                   `json:"callbackUrl,omitempty"`
	PaymentInstrument     GatewayPaymentInstrument `json:"paymentInstrument"`
}

type GatewayPaymentInstrument struct {
	Type string `json:"type"`
}

// GatewayRefundRequest is the refund payload; OriginalTransactionID is the
// gateway's id for the payment being refunded.
type GatewayRefundRequest struct {
	MerchantID            string `json:"merchantId"`
	MerchantUserID        string `json:"merchantUserId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	Amount                int64  `json:"amount"`
	CallbackURL           string `json:"callbackUrl,omitempty"`
}

// GatewayResponse is the envelope every gateway endpoint answers with.
type GatewayResponse struct {
	Success bool                 `json:"success"`
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Data    *GatewayResponseData `json:"data,omitempty"`
}

type GatewayResponseData struct {
	MerchantID            string                  `json:"merchantId,omitempty"`
	MerchantTransactionID string                  `json:"merchantTransactionId,omitempty"`
	TransactionID         string                  `json:"transactionId,omitempty"`
	Amount                int64                   `json:"amount,omitempty"`
	State                 GatewayState            `json:"state,omitempty"`
	ResponseCode          string                  `json:"responseCode,omitempty"`
	InstrumentResponse    *GatewayInstrumentReply `json:"instrumentResponse,omitempty"`
}

type GatewayInstrumentReply struct {
	Type         string               `json:"type,omitempty"`
	RedirectInfo *GatewayRedirectInfo `json:"redirectInfo,omitempty"`
}

type GatewayRedirectInfo struct {
	URL    string `json:"url,omitempty"`
	Method string `json:"method,omitempty"`
}

// GatewayWebhookBody wraps the base64 payload delivered on the callback.
type GatewayWebhookBody struct {
	Response string `json:"response"`
}
