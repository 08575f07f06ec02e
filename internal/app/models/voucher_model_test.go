package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVoucherRemainingDrinks(t *testing.T) {
	v := &Voucher{TotalDrinks: 10, ConsumedDrinks: 3}
	assert.Equal(t, 7, v.RemainingDrinks())

	v.ConsumedDrinks = 10
	assert.Equal(t, 0, v.RemainingDrinks())
}

func TestVoucherIsExpired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Voucher{ExpiryDate: &past}).IsExpired(now))
	assert.False(t, (&Voucher{ExpiryDate: &future}).IsExpired(now))

	// No expiry date means the voucher never expires.
	assert.False(t, (&Voucher{}).IsExpired(now))
}

func TestVoucherNextStatusAfterDebit(t *testing.T) {
	v := &Voucher{TotalDrinks: 10, ConsumedDrinks: 8, Status: VoucherStatusActive}

	assert.Equal(t, VoucherStatusActive, v.NextStatusAfterDebit(1))
	assert.Equal(t, VoucherStatusExhausted, v.NextStatusAfterDebit(2))
}
