package pkg

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()

	assert.True(t, IsValidSessionID(id))

	createdAt, ok := SessionCreatedAt(id)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), createdAt, time.Second)
}

func TestIsValidSessionID(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		valid bool
	}{
		{"well formed", "MSS_1755900000000_AB12CD", true},
		{"lowercase suffix", "MSS_1755900000000_ab12cd", false},
		{"short suffix", "MSS_1755900000000_AB12C", false},
		{"wrong prefix", "XSS_1755900000000_AB12CD", false},
		{"missing timestamp", "MSS__AB12CD", false},
		{"timestamp too short", "MSS_123_AB12CD", false},
		{"trailing garbage", "MSS_1755900000000_AB12CD!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidSessionID(tt.id))
		})
	}
}

func TestIsSessionExpired(t *testing.T) {
	fresh := fmt.Sprintf("MSS_%d_AB12CD", time.Now().UnixMilli())
	assert.False(t, IsSessionExpired(fresh, DefaultSessionWindow))

	stale := fmt.Sprintf("MSS_%d_AB12CD", time.Now().Add(-11*time.Minute).UnixMilli())
	assert.True(t, IsSessionExpired(stale, DefaultSessionWindow))

	// Malformed ids never pass the expiry gate.
	assert.True(t, IsSessionExpired("not-a-session", DefaultSessionWindow))
}

func TestEncodeDecodeQR(t *testing.T) {
	sessionID := NewSessionID()
	qr := EncodeQR("VM-JKT-001", sessionID, "COFFEE", "MOCHA", 15000)

	payload := DecodeQR(qr)

	assert.Equal(t, "VM-JKT-001", payload.MachineQRCode)
	assert.Equal(t, sessionID, payload.SessionID)
	assert.Equal(t, "COFFEE", payload.DrinkType)
	assert.Equal(t, "MOCHA", payload.DrinkFlavour)
	require.NotNil(t, payload.Price)
	assert.Equal(t, int64(15000), *payload.Price)
}

func TestDecodeQRMachineCodeOnly(t *testing.T) {
	payload := DecodeQR("VM-JKT-001")

	assert.Equal(t, "VM-JKT-001", payload.MachineQRCode)
	assert.Empty(t, payload.SessionID)
	assert.Empty(t, payload.DrinkType)
	assert.Nil(t, payload.Price)
}

func TestDecodeQRUnorderedAndUnknownKeys(t *testing.T) {
	payload := DecodeQR("VM-JKT-001|PRICE:9000|PROMO:SUMMER|DRINK:TEA|SESSION:MSS_1755900000000_AB12CD")

	assert.Equal(t, "VM-JKT-001", payload.MachineQRCode)
	assert.Equal(t, "MSS_1755900000000_AB12CD", payload.SessionID)
	assert.Equal(t, "TEA", payload.DrinkType)
	require.NotNil(t, payload.Price)
	assert.Equal(t, int64(9000), *payload.Price)
}

func TestDecodeQRBadPrice(t *testing.T) {
	payload := DecodeQR("VM-JKT-001|PRICE:abc")

	assert.Nil(t, payload.Price)
}
