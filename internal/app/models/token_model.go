package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefix for the sentinel rows written by logout-all. The sentinel's
// creation time is compared against each token's issued-at claim.
const AllTokensPrefix = "ALL_TOKENS_"

// BlacklistedToken stores either the hash of one revoked token or a
// logout-all sentinel for a user. Rows are purged once ExpiresAt passes.
type BlacklistedToken struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TokenHash string    `json:"token_hash" gorm:"type:varchar(128);uniqueIndex;not null"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	Reason    *string   `json:"reason,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// IsSentinel reports whether the row is a logout-all marker rather than a
// single token hash.
func (t *BlacklistedToken) IsSentinel() bool {
	return strings.HasPrefix(t.TokenHash, AllTokensPrefix)
}

// RevokesIssuedAt reports whether a token issued at the given time is
// covered by this logout-all sentinel: tokens issued before the sentinel
// was created are revoked, tokens issued after are not.
func (t *BlacklistedToken) RevokesIssuedAt(issuedAt time.Time) bool {
	return t.IsSentinel() && t.CreatedAt.After(issuedAt)
}

type LogoutRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}
