package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jobtrail/jobtrail-backend/internal/core/domain"
	apperrors "github.com/jobtrail/jobtrail-backend/internal/core/errors"
	"github.com/jobtrail/jobtrail-backend/internal/core/ports"
)

// AuthService implements authentication business logic
type AuthService struct {
	userRepo ports.UserRepository
	notifier ports.Notifier
	logger   *slog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

// NewAuthService creates a new authentication service
func NewAuthService(userRepo ports.UserRepository, notifier ports.Notifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger.With("component", "auth_service"),
	}
}

// Register creates a new unverified account and sends the verification token
// through the notifier.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	params := domain.UserRegistrationParams{
		Email:    email,
		Password: password,
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, apperrors.ErrUserExists
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	token, err := newVerificationToken()
	if err != nil {
		return nil, err
	}

	user, err := domain.NewUser(params, token)
	if err != nil {
		return nil, err
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	// Verification delivery is asynchronous and best-effort; the account
	// exists whether or not the mail makes it out.
	go s.notifier.Notify(context.Background(), ports.NotificationParams{
		RecipientEmail: created.Email,
		Subject:        "Verify your account",
		Message:        fmt.Sprintf("Your verification token: %s", token),
	})

	return created, nil
}

// VerifyEmail activates the account matching the verification token.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.ErrInvalidVerificationToken
	}
	return s.userRepo.VerifyByToken(ctx, token)
}

// Login authenticates a user with email and password. Unverified accounts
// are rejected even with correct credentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if email == "" {
		return nil, apperrors.ErrEmailRequired
	}
	if password == "" {
		return nil, apperrors.ErrPasswordRequired
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			// Don't reveal whether the email exists
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	return user, nil
}

// newVerificationToken returns a 32-hex-char random token.
func newVerificationToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
