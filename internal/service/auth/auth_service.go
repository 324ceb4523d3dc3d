// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lumen-service/internal/domain/subscription"
	"lumen-service/internal/domain/user"
	xerrors "lumen-service/internal/pkg/errors"
	"lumen-service/internal/pkg/jwt"
	"lumen-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepo is the slice of the user repository the auth service needs.
type UserRepo interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id int64) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
}

// Sessions abstracts the redis session store for tests.
type Sessions interface {
	Create(ctx context.Context, data *session.Data) error
	Revoke(ctx context.Context, userID int64, jti string) error
}

// Subscriptions resolves the subscription representing live service. The
// cached fields on the user row are only rewritten inside lifecycle
// transactions, so profile reads derive the effective state instead of
// trusting the cache between writes.
type Subscriptions interface {
	GetCurrent(ctx context.Context, userID int64) (*subscription.View, error)
}

type Service struct {
	users    UserRepo
	tokens   *jwt.Manager
	sessions Sessions
	subs     Subscriptions
	logger   *zap.Logger
}

func NewService(users UserRepo, tokens *jwt.Manager, sessions Sessions, subs Subscriptions, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		subs:     subs,
		logger:   logger,
	}
}

// Register creates a user account and logs it in.
func (s *Service) Register(ctx context.Context, req *user.RegisterRequest) (*user.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to hash password")
	}

	u := &user.User{
		Email:              req.Email,
		PasswordHash:       string(hash),
		FullName:           req.FullName,
		Role:               user.RoleUser,
		SubscriptionStatus: user.SubscriptionStatusInactive,
	}

	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, xerrors.ErrDuplicateEntry) {
			return nil, xerrors.ErrDuplicateEntry
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID), zap.String("email", u.Email))

	return s.issueToken(ctx, u)
}

// Login verifies credentials and issues a fresh token and session.
func (s *Service) Login(ctx context.Context, req *user.LoginRequest) (*user.AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	s.logger.Info("user logged in", zap.Int64("user_id", u.ID))

	return s.issueToken(ctx, u)
}

// Logout revokes the session behind the presented token.
func (s *Service) Logout(ctx context.Context, userID int64, jti string) error {
	return s.sessions.Revoke(ctx, userID, jti)
}

// GetMe returns the authenticated user's profile. The subscription fields
// are derived from the subscription rows as of now, so a cancelled plan
// stops reading as active the moment its end date passes, without waiting
// for the next lifecycle write to refresh the cache.
func (s *Service) GetMe(ctx context.Context, userID int64) (*user.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	view, err := s.subs.GetCurrent(ctx, userID)
	if err != nil {
		if !errors.Is(err, xerrors.ErrNotFound) {
			return nil, err
		}
		u.CurrentPlan = sql.NullString{}
		u.SubscriptionStatus = user.SubscriptionStatusInactive
		return u, nil
	}

	switch view.EffectiveStatus {
	case subscription.StatusActive:
		u.CurrentPlan = sql.NullString{String: view.PlanID, Valid: true}
		u.SubscriptionStatus = user.SubscriptionStatusActive
	case subscription.StatusSuspended:
		u.CurrentPlan = sql.NullString{String: view.PlanID, Valid: true}
		u.SubscriptionStatus = user.SubscriptionStatusSuspended
	default:
		u.CurrentPlan = sql.NullString{}
		u.SubscriptionStatus = user.SubscriptionStatusInactive
	}

	return u, nil
}

func (s *Service) issueToken(ctx context.Context, u *user.User) (*user.AuthResponse, error) {
	token, jti, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to sign token")
	}

	now := time.Now()
	data := &session.Data{
		JTI:       jti,
		UserID:    u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		LoginAt:   now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, data); err != nil {
		return nil, err
	}

	return &user.AuthResponse{Token: token, User: u}, nil
}
