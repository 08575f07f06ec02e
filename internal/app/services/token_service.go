package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sipstack/vend-core/internal/app/errors"
	"github.com/sipstack/vend-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Sentinel rows get a far-future expiry so a logout-all outlives every
// token that could have been issued before it.
const sentinelTTL = 10 * 365 * 24 * time.Hour

// TokenService records revoked tokens and logout-all watermarks. The
// database is the source of truth; redis is a read cache keyed by token
// hash with a TTL matching the token's own expiry.
type TokenService struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewTokenService(db *gorm.DB, redisClient *redis.Client) *TokenService {
	return &TokenService{
		db:    db,
		redis: redisClient,
	}
}

// HashToken returns the hex sha256 of a raw token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// auth middleware has already verified the token by the time it reaches a
// logout handler. Tokens without exp fall back to the sentinel TTL.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return time.Now().Add(sentinelTTL)
}

// Blacklist revokes one token until its own expiry passes, after which the
// row is eligible for purging anyway.
func (s *TokenService) Blacklist(ctx context.Context, token string, userID uuid.UUID, reason string) error {
	expiresAt := tokenExpiry(token)
	hash := HashToken(token)

	row := &models.BlacklistedToken{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		Reason:    &reason,
	}
	if err := s.db.Create(row).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to blacklist token")
	}

	if ttl := time.Until(expiresAt); ttl > 0 {
		if err := s.redis.Set(ctx, revokedCacheKey(hash), "1", ttl).Err(); err != nil {
			logrus.WithError(err).Warn("failed to cache revoked token")
		}
	}

	return nil
}

// BlacklistAll writes a logout-all sentinel for the user. Tokens issued
// before the sentinel's creation time are revoked; tokens issued after are
// not, even for the same user.
func (s *TokenService) BlacklistAll(ctx context.Context, userID uuid.UUID, reason string) error {
	now := time.Now()
	sentinel := &models.BlacklistedToken{
		TokenHash: fmt.Sprintf("%s%s_%d", models.AllTokensPrefix, userID, now.UnixNano()),
		UserID:    userID,
		ExpiresAt: now.Add(sentinelTTL),
		Reason:    &reason,
	}
	if err := s.db.Create(sentinel).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to blacklist user tokens")
	}

	return nil
}

// IsRevoked reports whether this exact token has been blacklisted.
func (s *TokenService) IsRevoked(ctx context.Context, token string) (bool, error) {
	hash := HashToken(token)

	cached, err := s.redis.Exists(ctx, revokedCacheKey(hash)).Result()
	if err == nil && cached > 0 {
		return true, nil
	}

	var count int64
	err = s.db.Model(&models.BlacklistedToken{}).
		Where("token_hash = ? AND expires_at > ?", hash, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, errors.NewInternalServerError(err, "Failed to check token revocation")
	}

	return count > 0, nil
}

// AreAllRevoked reports whether a logout-all sentinel newer than the
// token's issued-at claim exists for the user.
func (s *TokenService) AreAllRevoked(ctx context.Context, userID uuid.UUID, tokenIssuedAt time.Time) (bool, error) {
	var sentinel models.BlacklistedToken
	err := s.db.Where("user_id = ? AND token_hash LIKE ?", userID, models.AllTokensPrefix+"%").
		Order("created_at DESC").
		First(&sentinel).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, errors.NewInternalServerError(err, "Failed to check token revocation")
	}

	return sentinel.RevokesIssuedAt(tokenIssuedAt), nil
}

// PurgeExpired deletes rows whose expiry has passed. Scheduling belongs to
// the caller.
func (s *TokenService) PurgeExpired() (int64, error) {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&models.BlacklistedToken{})
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to purge expired tokens")
	}

	return result.RowsAffected, nil
}

func revokedCacheKey(hash string) string {
	return "vend:revoked:" + hash
}
