package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"database/sql"
	"testing"
	"time"

	"lumen-service/internal/domain/subscription"
	"lumen-service/internal/domain/user"
	xerrors "lumen-service/internal/pkg/errors"
	"lumen-service/internal/pkg/jwt"
	"lumen-service/internal/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byEmail map[string]*user.User
	nextID  int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*user.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return xerrors.ErrDuplicateEntry
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	clone := *u
	r.byEmail[u.Email] = &clone
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

type fakeSessions struct {
	created []*session.Data
	revoked []string
}

func (s *fakeSessions) Create(_ context.Context, data *session.Data) error {
	s.created = append(s.created, data)
	return nil
}

func (s *fakeSessions) Revoke(_ context.Context, _ int64, jti string) error {
	s.revoked = append(s.revoked, jti)
	return nil
}

type fakeSubs struct {
	view *subscription.View
	err  error
}

func (s *fakeSubs) GetCurrent(_ context.Context, _ int64) (*subscription.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeSessions, *jwt.Manager) {
	svc, users, sessions, tokens, _ := newTestServiceWithSubs(t)
	return svc, users, sessions, tokens
}

func newTestServiceWithSubs(t *testing.T) (*Service, *fakeUserRepo, *fakeSessions, *jwt.Manager, *fakeSubs) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := jwt.NewManager(key, &key.PublicKey, "lumen-service", "lumen-users", "", time.Hour)

	users := newFakeUserRepo()
	sessions := &fakeSessions{}
	subs := &fakeSubs{err: xerrors.ErrNotFound}
	return NewService(users, tokens, sessions, subs, zap.NewNop()), users, sessions, tokens, subs
}

func TestRegister(t *testing.T) {
	svc, _, sessions, tokens := newTestService(t)

	resp, err := svc.Register(context.Background(), &user.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie Ortega",
	})
	require.NoError(t, err)

	assert.Equal(t, user.RoleUser, resp.User.Role)
	assert.Equal(t, user.SubscriptionStatusInactive, resp.User.SubscriptionStatus)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("correct horse")))

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	require.Len(t, sessions.created, 1)
	assert.Equal(t, claims.ID, sessions.created[0].JTI)
	assert.Equal(t, "jamie@example.com", sessions.created[0].Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := &user.RegisterRequest{Email: "jamie@example.com", Password: "correct horse", FullName: "Jamie"}
	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
}

func TestLogin(t *testing.T) {
	svc, _, sessions, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &user.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), &user.LoginRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Len(t, sessions.created, 2)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), &user.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), &user.LoginRequest{
		Email:    "jamie@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// An unknown account reads the same as a bad password.
	_, err := svc.Login(context.Background(), &user.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestGetMeDerivesSubscriptionFields(t *testing.T) {
	svc, users, _, _, subs := newTestServiceWithSubs(t)

	resp, err := svc.Register(context.Background(), &user.RegisterRequest{
		Email:    "jamie@example.com",
		Password: "correct horse",
		FullName: "Jamie",
	})
	require.NoError(t, err)

	// Stored cache claims an active plan even though no subscription row backs it.
	cached := users.byEmail["jamie@example.com"]
	cached.CurrentPlan = sql.NullString{String: "premium-fiber", Valid: true}
	cached.SubscriptionStatus = user.SubscriptionStatusActive

	subs.err = xerrors.ErrNotFound
	me, err := svc.GetMe(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.False(t, me.CurrentPlan.Valid)
	assert.Equal(t, user.SubscriptionStatusInactive, me.SubscriptionStatus)

	subs.err = nil
	subs.view = &subscription.View{
		Subscription:    subscription.Subscription{PlanID: "basic-fiber"},
		EffectiveStatus: subscription.StatusActive,
	}
	me, err = svc.GetMe(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "basic-fiber", me.CurrentPlan.String)
	assert.Equal(t, user.SubscriptionStatusActive, me.SubscriptionStatus)

	subs.view = &subscription.View{
		Subscription:    subscription.Subscription{PlanID: "basic-fiber"},
		EffectiveStatus: subscription.StatusExpired,
	}
	me, err = svc.GetMe(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.False(t, me.CurrentPlan.Valid)
	assert.Equal(t, user.SubscriptionStatusInactive, me.SubscriptionStatus)
}

func TestLogout(t *testing.T) {
	svc, _, sessions, _ := newTestService(t)

	require.NoError(t, svc.Logout(context.Background(), 1, "some-jti"))
	assert.Equal(t, []string{"some-jti"}, sessions.revoked)
}
