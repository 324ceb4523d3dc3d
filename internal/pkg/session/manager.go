// internal/pkg/session/manager.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	xerrors "lumen-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

type Data struct {
	JTI       string    `json:"jti"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	LoginAt   time.Time `json:"login_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Manager stores bearer-token sessions in redis, keyed by user and JTI.
// Logout deletes the session, which invalidates the token before its expiry.
type Manager struct {
	rdb *redis.Client
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb}
}

func sessionKey(userID int64, jti string) string {
	return fmt.Sprintf("session:%d:%s", userID, jti)
}

// Create persists a session for the given token.
func (m *Manager) Create(ctx context.Context, data *Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(data.ExpiresAt)
	if ttl <= 0 {
		return xerrors.ErrSessionExpired
	}

	if err := m.rdb.Set(ctx, sessionKey(data.UserID, data.JTI), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Get returns the session for the given user/JTI pair, or ErrSessionExpired
// when the session was revoked or timed out.
func (m *Manager) Get(ctx context.Context, userID int64, jti string) (*Data, error) {
	raw, err := m.rdb.Get(ctx, sessionKey(userID, jti)).Bytes()
	if err == redis.Nil {
		return nil, xerrors.ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &data, nil
}

// Revoke deletes a session, invalidating its token.
func (m *Manager) Revoke(ctx context.Context, userID int64, jti string) error {
	if err := m.rdb.Del(ctx, sessionKey(userID, jti)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}
