package models

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestBlacklistedTokenIsSentinel(t *testing.T) {
	userID := uuid.New()

	sentinel := &BlacklistedToken{
		TokenHash: fmt.Sprintf("%s%s_%d", AllTokensPrefix, userID, time.Now().UnixNano()),
	}
	assert.True(t, sentinel.IsSentinel())

	single := &BlacklistedToken{TokenHash: "9f86d081884c7d659a2feaa0c55ad015"}
	assert.False(t, single.IsSentinel())
}

func TestSentinelRevokesIssuedAt(t *testing.T) {
	userID := uuid.New()
	sentinelCreated := time.Now()

	sentinel := &BlacklistedToken{
		TokenHash: fmt.Sprintf("%s%s_%d", AllTokensPrefix, userID, sentinelCreated.UnixNano()),
		CreatedAt: sentinelCreated,
	}

	// Token issued before logout-all is revoked.
	assert.True(t, sentinel.RevokesIssuedAt(sentinelCreated.Add(-time.Minute)))

	// Token issued after logout-all stays valid.
	assert.False(t, sentinel.RevokesIssuedAt(sentinelCreated.Add(time.Minute)))

	// A plain token row never revokes by issue time.
	single := &BlacklistedToken{TokenHash: "abc", CreatedAt: sentinelCreated}
	assert.False(t, single.RevokesIssuedAt(sentinelCreated.Add(-time.Minute)))
}
