package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/sipstack/vend-core/internal/infrastructures"
)

// Endpoint path constants the gateway expects in the signature input.
// Signing the same payload for different endpoints produces different
// signatures.
const (
	GatewayPayEndpoint    = "/pg/v1/pay"
	GatewayStatusEndpoint = "/pg/v1/status"
	GatewayRefundEndpoint = "/pg/v1/refund"
)

const checksumSeparator = "###"

// ChecksumService computes and verifies the gateway's keyed signatures.
// Pure and stateless: the only inputs are the shared salt key and the
// numeric salt index from configuration.
type ChecksumService struct {
	saltKey   string
	saltIndex int
}

func NewChecksumService(client *infrastructures.GatewayClient) *ChecksumService {
	return &ChecksumService{
		saltKey:   client.Config.SaltKey,
		saltIndex: client.Config.SaltIndex,
	}
}

// Sign returns hex(sha256(payload + endpointPath + saltKey)) + "###" + saltIndex.
func (s *ChecksumService) Sign(payload, endpointPath string) string {
	sum := sha256.Sum256([]byte(payload + endpointPath + s.saltKey))
	return hex.EncodeToString(sum[:]) + checksumSeparator + strconv.Itoa(s.saltIndex)
}

// VerifyCallback checks the X-VERIFY header of a gateway callback against
// the raw body. It never fails with an error: any parse problem makes the
// signature invalid, with the reason returned for logging.
func (s *ChecksumService) VerifyCallback(headerValue, body string) (bool, string) {
	parts := strings.Split(headerValue, checksumSeparator)
	if len(parts) != 2 {
		return false, "malformed signature header"
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return false, "non-numeric salt index"
	}
	if index != s.saltIndex {
		return false, "salt index mismatch"
	}

	sum := sha256.Sum256([]byte(body + s.saltKey))
	expected := hex.EncodeToString(sum[:])
	if subtle.ConstantTimeCompare([]byte(expected), []byte(parts[0])) != 1 {
		return false, "checksum mismatch"
	}

	return true, ""
}

// EncodePayload marshals a value to JSON and base64-encodes it, the wire
// form the gateway signs and transmits.
func (s *ChecksumService) EncodePayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodePayload reverses EncodePayload.
func (s *ChecksumService) DecodePayload(encoded string, v any) error {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
