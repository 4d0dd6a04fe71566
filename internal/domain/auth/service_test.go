package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"kitchenledger/internal/core/apperror"
	"kitchenledger/internal/core/id"
)

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[id.ID]*User
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	r := &mockUserRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[id.ID]*User),
	}
	for _, u := range users {
		r.byEmail[u.Email] = u
		r.byID[u.ID] = u
	}
	return r
}

func (m *mockUserRepo) Create(_ context.Context, user *User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, userID id.ID) error {
	u, ok := m.byID[userID]
	if !ok {
		return apperror.NewNotFound("user", userID.String())
	}
	delete(m.byEmail, u.Email)
	delete(m.byID, userID)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ UserFilter) ([]User, int, error) {
	var out []User
	for _, u := range m.byID {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *mockUserRepo) Exists(_ context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

type mockTokenRepo struct {
	byHash  map[string]*RefreshToken
	revoked []id.ID
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{byHash: make(map[string]*RefreshToken)}
}

func (m *mockTokenRepo) SaveRefreshToken(_ context.Context, token *RefreshToken) error {
	m.byHash[token.TokenHash] = token
	return nil
}

func (m *mockTokenRepo) GetRefreshToken(_ context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := m.byHash[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", tokenHash)
	}
	return t, nil
}

func (m *mockTokenRepo) RevokeRefreshToken(_ context.Context, tokenID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	m.revoked = append(m.revoked, tokenID)
	return nil
}

func (m *mockTokenRepo) RevokeAllUserTokens(_ context.Context, userID id.ID, reason string) error {
	for _, t := range m.byHash {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	return nil
}

func (m *mockTokenRepo) CleanupExpiredTokens(_ context.Context) (int, error) {
	return 0, nil
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(users ...*User) (*Service, *mockUserRepo, *mockTokenRepo) {
	userRepo := newMockUserRepo(users...)
	tokenRepo := newMockTokenRepo()
	svc := NewService(userRepo, tokenRepo, passthroughTx{}, NewJWTService(DefaultJWTConfig("test-secret")), DefaultServiceConfig())
	return svc, userRepo, tokenRepo
}

func activeUser(t *testing.T, email, password string) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewUser(email, string(hash), "Test Staff", RoleStaff)
}

func TestLogin_Success(t *testing.T) {
	user := activeUser(t, "staff@example.com", "correct-horse")
	svc, _, tokenRepo := newTestService(user)

	tokens, loggedIn, err := svc.Login(context.Background(), Credentials{
		Email:    "staff@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotNil(t, loggedIn.LastLoginAt)
	assert.Zero(t, loggedIn.FailedLoginAttempts)
	assert.Len(t, tokenRepo.byHash, 1, "refresh token stored hashed")
	assert.NotContains(t, tokenRepo.byHash, tokens.RefreshToken, "the raw token must never be stored")
}

func TestLogin_WrongPasswordCountsAttempt(t *testing.T) {
	user := activeUser(t, "staff@example.com", "correct-horse")
	svc, _, _ := newTestService(user)

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "staff@example.com",
		Password: "wrong",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
	assert.Equal(t, 1, user.FailedLoginAttempts)
}

func TestLogin_LocksAfterMaxAttempts(t *testing.T) {
	user := activeUser(t, "staff@example.com", "correct-horse")
	svc, _, _ := newTestService(user)
	creds := Credentials{Email: "staff@example.com", Password: "wrong"}

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(context.Background(), creds)
		require.Error(t, err)
	}
	assert.True(t, user.IsLocked())

	// Even the correct password is rejected while locked.
	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "staff@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestLogin_UnknownEmailIsUnauthorized(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Login(context.Background(), Credentials{Email: "ghost@example.com", Password: "x"})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	// Unknown account and wrong password look identical to the caller.
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_DisabledAccountIsForbidden(t *testing.T) {
	user := activeUser(t, "staff@example.com", "correct-horse")
	user.IsActive = false
	svc, _, _ := newTestService(user)

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "staff@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRefreshToken_RotatesOldToken(t *testing.T) {
	user := activeUser(t, "staff@example.com", "correct-horse")
	svc, _, tokenRepo := newTestService(user)

	tokens, _, err := svc.Login(context.Background(), Credentials{
		Email:    "staff@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	newPair, err := svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, newPair.RefreshToken)

	// The old token is revoked and cannot be used again.
	_, err = svc.RefreshToken(context.Background(), tokens.RefreshToken)
	require.Error(t, err)
	assert.Len(t, tokenRepo.revoked, 1)
}

func TestRefreshToken_RejectsUnknownToken(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RefreshToken(context.Background(), "no-such-token")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestRegister_RejectsDuplicateEmail(t *testing.T) {
	existing := activeUser(t, "staff@example.com", "whatever")
	svc, _, _ := newTestService(existing)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "staff@example.com",
		Password: "long-enough-pw",
		Name:     "Duplicate",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestRegister_DefaultsToStaffRole(t *testing.T) {
	svc, userRepo, _ := newTestService()

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "long-enough-pw",
		Name:     "New Staff",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, user.Role)
	assert.Contains(t, userRepo.byEmail, "new@example.com")
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "new@example.com",
		Password: "short",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
