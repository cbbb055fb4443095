package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
	"github.com/jobtrail/jobtrail-backend/internal/core/mocks"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
	"github.com/jobtrail/jobtrail-backend/internal/core/services"
)

// waitingNotifier records the notification and releases a WaitGroup so tests
// can observe the async delivery without sleeping.
type waitingNotifier struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	params []ports.NotificationParams
}

func (n *waitingNotifier) Notify(_ context.Context, params ports.NotificationParams) {
	n.mu.Lock()
	n.params = append(n.params, params)
	n.mu.Unlock()
	n.wg.Done()
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates unverified user and sends verification mail", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		notifier := &waitingNotifier{}
		notifier.wg.Add(1)
		svc := services.NewAuthService(repo, notifier, testLogger())

		created := &domain.User{}
		repo.On("GetByEmail", ctx, "new@example.com").Return(nil, apperrors.ErrUserNotFound)
		repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) {
				u := args.Get(1).(*domain.User)
				assert.False(t, u.IsVerified)
				require.NotNil(t, u.VerificationToken)
				assert.Len(t, *u.VerificationToken, 32)
				assert.NotEqual(t, "Str0ngPass", u.PasswordHash, "password must be hashed")
				*created = *u
			}).
			Return(created, nil)

		user, err := svc.Register(ctx, "new@example.com", "Str0ngPass")

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)

		notifier.wg.Wait()
		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		require.Len(t, notifier.params, 1)
		assert.Equal(t, "new@example.com", notifier.params[0].RecipientEmail)
		assert.Contains(t, notifier.params[0].Message, *user.VerificationToken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		repo.On("GetByEmail", ctx, "taken@example.com").Return(&domain.User{Email: "taken@example.com"}, nil)

		_, err := svc.Register(ctx, "taken@example.com", "Str0ngPass")

		assert.ErrorIs(t, err, apperrors.ErrUserExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("weak passwords are rejected", func(t *testing.T) {
		cases := []struct {
			name     string
			password string
		}{
			{"too short", "Ab1"},
			{"no uppercase", "lowercase1only"},
			{"no lowercase", "UPPERCASE1ONLY"},
			{"no number", "NoNumbersHere"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				repo := mocks.NewMockUserRepository()
				svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

				_, err := svc.Register(ctx, "new@example.com", tc.password)

				assert.Error(t, err)
				repo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
			})
		}
	})
}

func TestAuthService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		repo.On("VerifyByToken", ctx, "abc123").Return(nil)

		assert.NoError(t, svc.VerifyEmail(ctx, "abc123"))
	})

	t.Run("empty token short-circuits", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		err := svc.VerifyEmail(ctx, "")

		assert.ErrorIs(t, err, apperrors.ErrInvalidVerificationToken)
		repo.AssertNotCalled(t, "VerifyByToken", mock.Anything, mock.Anything)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	verifiedUser := func(t *testing.T) *domain.User {
		t.Helper()
		token := "tok"
		u, err := domain.NewUser(domain.UserRegistrationParams{
			Email:    "user@example.com",
			Password: "Str0ngPass",
		}, token)
		require.NoError(t, err)
		u.IsVerified = true
		return u
	}

	t.Run("success", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		repo.On("GetByEmail", ctx, "user@example.com").Return(verifiedUser(t), nil)

		user, err := svc.Login(ctx, "user@example.com", "Str0ngPass")

		require.NoError(t, err)
		assert.Equal(t, "user@example.com", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		repo.On("GetByEmail", ctx, "user@example.com").Return(verifiedUser(t), nil)

		_, err := svc.Login(ctx, "user@example.com", "WrongPass1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		repo.On("GetByEmail", ctx, "ghost@example.com").Return(nil, apperrors.ErrUserNotFound)

		_, err := svc.Login(ctx, "ghost@example.com", "Str0ngPass")

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unverified account is rejected even with correct password", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		u := verifiedUser(t)
		u.IsVerified = false
		repo.On("GetByEmail", ctx, "user@example.com").Return(u, nil)

		_, err := svc.Login(ctx, "user@example.com", "Str0ngPass")

		assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)
	})

	t.Run("empty fields", func(t *testing.T) {
		repo := mocks.NewMockUserRepository()
		svc := services.NewAuthService(repo, mocks.NewMockNotifier(), testLogger())

		_, err := svc.Login(ctx, "", "pass")
		assert.ErrorIs(t, err, apperrors.ErrEmailRequired)

		_, err = svc.Login(ctx, "user@example.com", "")
		assert.ErrorIs(t, err, apperrors.ErrPasswordRequired)
	})
}
