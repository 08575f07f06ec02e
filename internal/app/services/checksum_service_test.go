package services

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecksumService() *ChecksumService {
	return &ChecksumService{saltKey: "test-salt-key", saltIndex: 1}
}

func TestSign(t *testing.T) {
	s := newTestChecksumService()

	signature := s.Sign("cGF5bG9hZA==", GatewayPayEndpoint)

	sum := sha256.Sum256([]byte("cGF5bG9hZA==" + GatewayPayEndpoint + "test-salt-key"))
	assert.Equal(t, hex.EncodeToString(sum[:])+"###1", signature)
}

func TestSignEndpointChangesSignature(t *testing.T) {
	s := newTestChecksumService()

	paySignature := s.Sign("cGF5bG9hZA==", GatewayPayEndpoint)
	statusSignature := s.Sign("cGF5bG9hZA==", GatewayStatusEndpoint)

	assert.NotEqual(t, paySignature, statusSignature)
}

func TestVerifyCallback(t *testing.T) {
	s := newTestChecksumService()
	body := `{"response":"cGF5bG9hZA=="}`

	sum := sha256.Sum256([]byte(body + "test-salt-key"))
	header := hex.EncodeToString(sum[:]) + "###1"

	ok, reason := s.VerifyCallback(header, body)
	assert.True(t, ok)
	assert.Empty(t, reason)
}

func TestVerifyCallbackTamperedBody(t *testing.T) {
	s := newTestChecksumService()
	body := `{"response":"cGF5bG9hZA=="}`

	sum := sha256.Sum256([]byte(body + "test-salt-key"))
	header := hex.EncodeToString(sum[:]) + "###1"

	ok, reason := s.VerifyCallback(header, body+" ")
	assert.False(t, ok)
	assert.Equal(t, "checksum mismatch", reason)
}

func TestVerifyCallbackWrongSaltIndex(t *testing.T) {
	s := newTestChecksumService()
	body := `{"response":"cGF5bG9hZA=="}`

	sum := sha256.Sum256([]byte(body + "test-salt-key"))
	header := hex.EncodeToString(sum[:]) + "###2"

	ok, reason := s.VerifyCallback(header, body)
	assert.False(t, ok)
	assert.Equal(t, "salt index mismatch", reason)
}

func TestVerifyCallbackMalformedHeader(t *testing.T) {
	s := newTestChecksumService()

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing separator", "deadbeef", "malformed signature header"},
		{"extra separator", "deadbeef###1###2", "malformed signature header"},
		{"non-numeric index", "deadbeef###one", "non-numeric salt index"},
		{"empty", "", "malformed signature header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := s.VerifyCallback(tt.header, "{}")
			assert.False(t, ok)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestEncodeDecodePayload(t *testing.T) {
	s := newTestChecksumService()

	encoded, err := s.EncodePayload(map[string]string{"merchantTransactionId": "VND123"})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, s.DecodePayload(encoded, &decoded))
	assert.Equal(t, "VND123", decoded["merchantTransactionId"])
}

func TestDecodePayloadInvalidBase64(t *testing.T) {
	s := newTestChecksumService()

	var decoded map[string]string
	err := s.DecodePayload("!!not-base64!!", &decoded)
	assert.Error(t, err)
}
