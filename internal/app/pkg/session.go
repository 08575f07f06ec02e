package pkg

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Session ids are MSS_<unixMillis>_<6 chars [A-Z0-9]>. The creation time is
// embedded so expiry is a pure function of the id and the wall clock.
var sessionIDPattern = regexp.MustCompile(`^MSS_(\d{10,16})_([A-Z0-9]{6})$`)

const DefaultSessionWindow = 10 * time.Minute

// NewSessionID mints a machine dispensing session id.
func NewSessionID() string {
	return fmt.Sprintf("MSS_%d_%s", time.Now().UnixMilli(), RandomUpperAlphanumeric(6))
}

// IsValidSessionID reports whether the id matches the expected format.
// Ids must be validated before any field of them is trusted.
func IsValidSessionID(sessionID string) bool {
	return sessionIDPattern.MatchString(sessionID)
}

// SessionCreatedAt extracts the embedded creation timestamp.
func SessionCreatedAt(sessionID string) (time.Time, bool) {
	m := sessionIDPattern.FindStringSubmatch(sessionID)
	if m == nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// IsSessionExpired compares the embedded timestamp against the window.
// A malformed id is treated as expired.
func IsSessionExpired(sessionID string, window time.Duration) bool {
	createdAt, ok := SessionCreatedAt(sessionID)
	if !ok {
		return true
	}
	return time.Since(createdAt) > window
}

// QRPayload is the decoded form of a machine QR code. Fields after the
// machine code are optional: a legacy machine may print only its code.
type QRPayload struct {
	MachineQRCode string
	SessionID     string
	DrinkType     string
	DrinkFlavour  string
	Price         *int64
}

// EncodeQR renders the pipe-delimited QR string:
// <machineQRCode>|SESSION:<id>|DRINK:<type>|FLAVOUR:<flavor>|PRICE:<price>.
func EncodeQR(machineQRCode, sessionID, drinkType, drinkFlavour string, price int64) string {
	return fmt.Sprintf("%s|SESSION:%s|DRINK:%s|FLAVOUR:%s|PRICE:%d",
		machineQRCode, sessionID, drinkType, drinkFlavour, price)
}

// DecodeQR splits a QR payload. The first token is always the machine QR
// code; the remaining tokens are KEY:VALUE pairs parsed by key, not
// position. Unknown keys are ignored and missing keys leave the
// corresponding fields empty rather than erroring.
func DecodeQR(qr string) QRPayload {
	tokens := strings.Split(qr, "|")
	payload := QRPayload{MachineQRCode: strings.TrimSpace(tokens[0])}

	for _, token := range tokens[1:] {
		key, value, found := strings.Cut(token, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "SESSION":
			payload.SessionID = value
		case "DRINK":
			payload.DrinkType = value
		case "FLAVOUR":
			payload.DrinkFlavour = value
		case "PRICE":
			if price, err := strconv.ParseInt(value, 10, 64); err == nil {
				payload.Price = &price
			}
		}
	}

	return payload
}
