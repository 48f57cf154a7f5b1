package auth_test

import (
	"context"
	"testing"
	"time"

	libjwt "github.com/geniepay/geniepay/internal/lib/jwt"
	"github.com/geniepay/geniepay/internal/lib/password"
	"github.com/geniepay/geniepay/internal/lib/sl"
	"github.com/geniepay/geniepay/internal/models"
	"github.com/geniepay/geniepay/internal/services/auth"
	"github.com/geniepay/geniepay/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) RegisterUser(ctx context.Context, user models.User) (string, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetVerificationCode(ctx context.Context, userUID, code, channel string, expiresAt time.Time) error {
	args := m.Called(ctx, userUID, code, channel, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserVerified(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendOTP(user models.User, code string) {
	m.Called(user, code)
}

func (m *MockNotifier) SendWelcome(user models.User) {
	m.Called(user)
}

func newService(repo *MockUserRepository, notifier *MockNotifier) *auth.Service {
	maker := libjwt.NewJWTMaker("test-secret", time.Hour)
	return auth.New(repo, notifier, maker, sl.DiscardLogger())
}

func TestSignup_Success(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	repo.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, repository.ErrNotFound)
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Email == "new@example.com" && !u.IsVerified && u.OTPCode != nil
	})).Return("uid-1", nil)
	notifier.On("SendOTP", mock.Anything, mock.Anything).Return()

	user, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Asha",
		Email:    "new@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", user.UID)
	require.NotNil(t, user.OTPChannel)
	assert.Equal(t, models.OTPChannelEmail, *user.OTPChannel)
	notifier.AssertExpectations(t)
}

func TestSignup_PhoneChannel(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
	repo.On("RegisterUser", mock.Anything, mock.Anything).Return("uid-2", nil)
	notifier.On("SendOTP", mock.Anything, mock.Anything).Return()

	user, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:        "Asha",
		Email:       "phone@example.com",
		Password:    "secret123",
		PhoneNumber: "9876543210",
	})
	require.NoError(t, err)
	require.NotNil(t, user.OTPChannel)
	assert.Equal(t, models.OTPChannelPhone, *user.OTPChannel)
	require.NotNil(t, user.PhoneNumber)
	assert.Equal(t, "+919876543210", *user.PhoneNumber)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	repo.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{UID: "uid-1", Email: "taken@example.com"}, nil)

	_, err := svc.Signup(context.Background(), models.SignupRequest{
		Name:     "Asha",
		Email:    "taken@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrUserExists)
	repo.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
}

func TestVerifyOTP_Success(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	code := "123456"
	expiresAt := time.Now().Add(5 * time.Minute)
	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}, nil)
	repo.On("MarkUserVerified", mock.Anything, "uid-1").Return(nil)
	notifier.On("SendWelcome", mock.Anything).Return()

	token, user, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{
		Email: "user@example.com",
		Code:  "123456",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.IsVerified)
	assert.Nil(t, user.OTPCode)
	repo.AssertExpectations(t)
}

func TestVerifyOTP_ExpiredCode(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	code := "123456"
	expiresAt := time.Now().Add(-time.Minute)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(&models.User{
		UID:          "uid-1",
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}, nil)

	_, _, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{
		Email: "user@example.com",
		Code:  "123456",
	})
	assert.ErrorIs(t, err, auth.ErrCodeExpired)
	repo.AssertNotCalled(t, "MarkUserVerified", mock.Anything, mock.Anything)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	code := "123456"
	expiresAt := time.Now().Add(5 * time.Minute)
	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(&models.User{
		UID:          "uid-1",
		OTPCode:      &code,
		OTPExpiresAt: &expiresAt,
	}, nil)

	_, _, err := svc.VerifyOTP(context.Background(), models.VerifyOTPRequest{
		Email: "user@example.com",
		Code:  "654321",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCode)
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(&models.User{
		UID:        "uid-1",
		IsVerified: true,
	}, nil)

	err := svc.ResendOTP(context.Background(), "user@example.com")
	assert.ErrorIs(t, err, auth.ErrAlreadyVerified)
}

func TestLogin_Success(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		UID:          "uid-1",
		Email:        "user@example.com",
		PasswordHash: hash,
		IsVerified:   true,
	}, nil)

	token, user, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "uid-1", user.UID)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(&models.User{
		UID:          "uid-1",
		PasswordHash: hash,
		IsVerified:   true,
	}, nil)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_NotVerified(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	hash, err := password.GetHash("secret123")
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(&models.User{
		UID:          "uid-1",
		PasswordHash: hash,
		IsVerified:   false,
	}, nil)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrNotVerified)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	notifier := new(MockNotifier)
	svc := newService(repo, notifier)

	repo.On("GetUserByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
