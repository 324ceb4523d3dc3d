// internal/pkg/jwt/manager.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	PrivPath string
	PubPath  string
	Issuer   string
	Audience string
	TTL      time.Duration
	KID      string
}

// Manager signs and verifies RS256 bearer tokens.
type Manager struct {
	priv     *rsa.PrivateKey
	pub      *rsa.PublicKey
	issuer   string
	audience string
	kid      string
	ttl      time.Duration
}

// LoadAndBuild reads the PEM key pair from disk and builds a Manager.
func LoadAndBuild(cfg Config) (*Manager, error) {
	privPEM, err := os.ReadFile(cfg.PrivPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	pubPEM, err := os.ReadFile(cfg.PubPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return NewManager(priv, pub, cfg.Issuer, cfg.Audience, cfg.KID, cfg.TTL), nil
}

func NewManager(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer, audience, kid string, ttl time.Duration) *Manager {
	return &Manager{
		priv:     priv,
		pub:      pub,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		ttl:      ttl,
	}
}

// Generate creates a signed access token; returns the token and its JTI.
func (m *Manager) Generate(userID int64, role string) (string, string, error) {
	if m.priv == nil {
		return "", "", fmt.Errorf("jwt manager has nil private key")
	}

	now := time.Now()
	jti := ulid.Make().String()

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			Audience:  []string{m.audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if m.kid != "" {
		tok.Header["kid"] = m.kid
	}

	signed, err := tok.SignedString(m.priv)
	return signed, jti, err
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Verify validates a token signature and registered claims.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	if m.pub == nil {
		return nil, fmt.Errorf("jwt manager has nil public key")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.pub, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != m.issuer {
		return nil, fmt.Errorf("invalid issuer: expected %s, got %s", m.issuer, claims.Issuer)
	}

	if !claims.VerifyAudience(m.audience, true) {
		return nil, fmt.Errorf("invalid audience")
	}

	return claims, nil
}
