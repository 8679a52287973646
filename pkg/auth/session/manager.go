// Package session tracks which access tokens are still live on the server
// side, so a logout takes effect immediately instead of waiting for the JWT
// to expire. It also mints the opaque tokens that identify guest shoppers.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trendora/trendora-backend/pkg/config"
	redisclient "github.com/trendora/trendora-backend/pkg/redis"
)

const guestTokenBytes = 24

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(sessionID string) string
}

// Manager records and revokes the server-side session tied to each JWT jti.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by the auth middleware.
type Checker interface {
	HasSession(ctx context.Context, jti string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.SessionTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl < accessTTL {
		return nil, fmt.Errorf("session ttl (%s) must cover the access token ttl (%s)", ttl, accessTTL)
	}

	return &Manager{store: client, keyer: client, ttl: ttl}, nil
}

// Register marks the jti as an active session for the user.
func (m *Manager) Register(ctx context.Context, jti string, userID uuid.UUID) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("jti is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(jti), userID.String(), m.ttl)
}

// HasSession reports whether the jti still identifies a live session.
func (m *Manager) HasSession(ctx context.Context, jti string) (bool, error) {
	if strings.TrimSpace(jti) == "" {
		return false, fmt.Errorf("jti is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(jti)); err != nil {
		if errors.Is(err, redisclient.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke ends the session tied to the jti. Revoking an absent session is
// not an error.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	if strings.TrimSpace(jti) == "" {
		return fmt.Errorf("jti is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(jti))
}

// NewGuestToken mints the opaque token that ties a guest browser to its
// cart and orders.
func NewGuestToken() (string, error) {
	buf := make([]byte, guestTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating guest token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
