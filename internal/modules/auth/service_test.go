package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"reservehub/internal/config"
	"reservehub/internal/domain"
)

// Mock User Repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock token repository
type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, t *domain.UserToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTokenRepo) GetActive(ctx context.Context, purpose domain.TokenPurpose, hash string) (*domain.UserToken, error) {
	args := m.Called(ctx, purpose, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserToken), args.Error(1)
}

func (m *mockTokenRepo) MarkUsed(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTokenRepo) InvalidateForUser(ctx context.Context, userID int64, purpose domain.TokenPurpose) error {
	args := m.Called(ctx, userID, purpose)
	return args.Error(0)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return int64(args.Int(0)), args.Error(1)
}

// Mock JWT service
type mockJWTService struct {
	mock.Mock
}

func (m *mockJWTService) GenerateToken(userID int64, role string) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendActivation(ctx context.Context, to, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func (m *mockMailer) SendEmailChange(ctx context.Context, to, token string) error {
	return m.Called(ctx, to, token).Error(0)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		TokenPepper:      "pepper",
		ActivationTTL:    time.Hour,
		PasswordResetTTL: time.Hour,
		EmailChangeTTL:   time.Hour,
		InitialBalance:   1000,
		MaxFailedLogins:  5,
		LockoutDuration:  15 * time.Minute,
	}
}

type mocks struct {
	users  *mockUserRepo
	tokens *mockTokenRepo
	jwt    *mockJWTService
	mailer *mockMailer
}

func newMockedService() (*Service, mocks) {
	m := mocks{
		users:  new(mockUserRepo),
		tokens: new(mockTokenRepo),
		jwt:    new(mockJWTService),
		mailer: new(mockMailer),
	}
	return NewService(m.users, m.tokens, m.jwt, m.mailer, nil, testAuthConfig()), m
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Register_Success(t *testing.T) {
	svc, m := newMockedService()

	m.users.On("ExistsByEmail", mock.Anything, "test@example.com").Return(false, nil)
	m.users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "test@example.com" && !u.IsActive && u.Balance == 1000
	})).Return(nil)
	m.tokens.On("InvalidateForUser", mock.Anything, int64(1), domain.TokenActivation).Return(nil)
	m.tokens.On("Create", mock.Anything, mock.MatchedBy(func(tk *domain.UserToken) bool {
		return tk.Purpose == domain.TokenActivation && len(tk.TokenHash) == 64
	})).Return(nil)
	m.mailer.On("SendActivation", mock.Anything, "test@example.com", mock.AnythingOfType("string")).Return(nil)

	user, err := svc.Register(context.Background(), RegisterRequest{
		FirstName:       "Anna",
		LastName:        "Nowak",
		Email:           " Test@Example.com ",
		Password:        "password123",
		PasswordConfirm: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Empty(t, user.PasswordHash)
	m.users.AssertExpectations(t)
	m.tokens.AssertExpectations(t)
	m.mailer.AssertExpectations(t)
}

func TestService_Register_EmailExists(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "taken@example.com", Password: "password123", PasswordConfirm: "password123",
	})

	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_Register_PasswordMismatch(t *testing.T) {
	svc, m := newMockedService()

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email: "a@example.com", Password: "password123", PasswordConfirm: "password124",
	})

	assert.ErrorIs(t, err, ErrPasswordMismatch)
	m.users.AssertNotCalled(t, "ExistsByEmail", mock.Anything, mock.Anything)
}

func TestService_Login_Success(t *testing.T) {
	svc, m := newMockedService()
	user := &domain.User{ID: 7, Email: "a@example.com", PasswordHash: hashed(t, "password123"), IsActive: true, IsStaff: true}

	m.users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)
	m.jwt.On("GenerateToken", int64(7), "admin").Return("jwt-token", nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "jwt-token", res.AccessToken)
	assert.Empty(t, res.User.PasswordHash)
}

func TestService_Login_InactiveAfterCorrectPassword(t *testing.T) {
	svc, m := newMockedService()
	user := &domain.User{ID: 3, PasswordHash: hashed(t, "password123"), IsActive: false}
	m.users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "password123"})

	assert.ErrorIs(t, err, ErrAccountInactive)
	m.jwt.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_WrongPasswordCountsAttempts(t *testing.T) {
	svc, m := newMockedService()
	user := &domain.User{ID: 4, PasswordHash: hashed(t, "password123"), IsActive: true, FailedLoginAttempts: 1}
	m.users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)
	m.users.On("UpdateFields", mock.Anything, int64(4), map[string]any{"failed_login_attempts": 2}).Return(nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrong"})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	m.users.AssertExpectations(t)
}

func TestService_Login_LocksAfterMaxAttempts(t *testing.T) {
	svc, m := newMockedService()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user := &domain.User{ID: 5, PasswordHash: hashed(t, "password123"), IsActive: true, FailedLoginAttempts: 4}
	m.users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)
	m.users.On("UpdateFields", mock.Anything, int64(5), mock.MatchedBy(func(f map[string]any) bool {
		until, ok := f["locked_until"].(time.Time)
		return ok && until.Equal(now.Add(15*time.Minute))
	})).Return(nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestService_Login_Locked(t *testing.T) {
	svc, m := newMockedService()
	until := time.Now().Add(time.Hour)
	user := &domain.User{ID: 6, PasswordHash: hashed(t, "password123"), IsActive: true, LockedUntil: &until}
	m.users.On("GetByEmail", mock.Anything, "a@example.com").Return(user, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrAccountLocked)
}

func TestService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	require.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@example.com"))
	m.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Activate_InvalidToken(t *testing.T) {
	svc, m := newMockedService()
	m.tokens.On("GetActive", mock.Anything, domain.TokenActivation, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, svc.Activate(context.Background(), "nope"), ErrInvalidToken)
}

func TestService_ChangePassword(t *testing.T) {
	svc, m := newMockedService()
	user := &domain.User{ID: 8, PasswordHash: hashed(t, "password123")}
	m.users.On("GetByID", mock.Anything, int64(8)).Return(user, nil)
	m.users.On("UpdateFields", mock.Anything, int64(8), mock.Anything).Return(nil)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, 8, ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpassword1", NewPasswordConfirm: "newpassword1"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, 8, ChangePasswordRequest{OldPassword: "password123", NewPassword: "password123", NewPasswordConfirm: "password123"})
	assert.ErrorIs(t, err, ErrSamePassword)

	err = svc.ChangePassword(ctx, 8, ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1", NewPasswordConfirm: "newpassword2"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	require.NoError(t, svc.ChangePassword(ctx, 8, ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1", NewPasswordConfirm: "newpassword1"}))
	m.users.AssertNumberOfCalls(t, "UpdateFields", 1)
}

func TestService_Register_MailFailureStillCreatesAccount(t *testing.T) {
	svc, m := newMockedService()
	m.users.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	m.users.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.tokens.On("InvalidateForUser", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.tokens.On("Create", mock.Anything, mock.Anything).Return(nil)
	m.mailer.On("SendActivation", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("mail down"))

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email: "b@example.com", Password: "password123", PasswordConfirm: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}
