package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bizsite-backend/internal/config"
	domainUser "bizsite-backend/internal/domain/user"
	"bizsite-backend/internal/logger"
	"bizsite-backend/internal/mailer"
	appErrors "bizsite-backend/pkg/errors"
	"bizsite-backend/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service orchestrates registration, login, forgot-password and
// reset-password against the user repository, token helpers and mailer.
//
// Flows are stateless between requests; the only shared state is the user
// row, and concurrent forgot-password requests resolve last-write-wins.
type Service struct {
	userRepo domainUser.Repository
	mailer   mailer.Mailer
	config   *config.Config
}

func NewService(userRepo domainUser.Repository, m mailer.Mailer, cfg *config.Config) *Service {
	return &Service{
		userRepo: userRepo,
		mailer:   m,
		config:   cfg,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, appErrors.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", req.Email),
		)
		return nil, appErrors.ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domainUser.User{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHashed: hashedPassword,
		Role:           domainUser.DefaultRole,
		AvatarID:       req.Email,
		AvatarURL:      domainUser.DefaultAvatarURL,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, appErrors.ErrUserAlreadyExists) {
			return nil, err
		}
		logger.Error("User creation failed", zap.Error(err))
		return nil, appErrors.ErrUserCreateFailed
	}

	return s.authResponse(user)
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	// Unknown email and wrong password take the same exit so the response
	// never reveals whether the account exists.
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, appErrors.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, req.Password) {
		return nil, appErrors.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	if user.HasPendingReset(time.Now()) {
		logger.Debug("Replacing outstanding reset token",
			zap.String("user_id", user.ID.String()),
		)
	}

	ttl := time.Duration(s.config.Reset.TokenTTLMinutes) * time.Minute
	plaintext, hashed, expiresAt, err := utils.GeneratePasswordResetToken(ttl)
	if err != nil {
		return err
	}

	if err := s.userRepo.SetResetPasswordToken(ctx, user.ID, hashed, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/auth/reset/%s", strings.TrimRight(s.config.Client.URL, "/"), plaintext)
	subject := "Reset your Password!"
	body := fmt.Sprintf("Please click the link - %s \nplease ignore it, if you did not request this.", resetURL)

	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		// Roll back so no usable-but-unannounced token lingers. A concurrent
		// forgot-password that landed in between simply wins.
		if clearErr := s.userRepo.ClearResetPasswordToken(ctx, user.ID); clearErr != nil {
			logger.Error("Failed to clear reset token after email failure",
				zap.String("user_id", user.ID.String()),
				zap.Error(clearErr),
			)
		}
		logger.Warn("Reset email delivery failed",
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return appErrors.NewAppError("EMAIL_DELIVERY_FAILED", err.Error(), err)
	}

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	// One query matches hash and expiry together, so an expired token is
	// indistinguishable from a wrong one.
	tokenHash := utils.HashResetToken(token)
	user, err := s.userRepo.GetByResetPasswordToken(ctx, tokenHash, time.Now())
	if err != nil {
		return err
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, hashedPassword)
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (s *Service) authResponse(user *domainUser.User) (*AuthResponse, error) {
	accessToken, expiresAt, err := utils.GenerateAccessToken(
		user.ID,
		user.Email,
		user.Role,
		s.config.JWT.Secret,
		s.config.JWT.ExpiryHours,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        ToUserResponse(user),
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}, nil
}
