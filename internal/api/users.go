package api

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordHashCost  = 10
	minPasswordLength = 6
	signUpBonusTitle  = "Sign-up bonus"
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// RegisterUser creates an account and credits the sign-up bonus when one is configured
func (s *RewardsService) RegisterUser(ctx context.Context, params RegisterParams) (*models.Profile, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Email = strings.TrimSpace(params.Email)
	if params.Name == "" {
		return nil, invalidInput("name is required")
	}
	if _, err := mail.ParseAddress(params.Email); err != nil {
		return nil, invalidInput("invalid email %q", params.Email)
	}
	if len(params.Password) < minPasswordLength {
		return nil, invalidInput("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), passwordHashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, store.CreateUserParams{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: string(hash),
		ReferralCode: newReferralCode(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUser) {
			return nil, err
		}
		zap.L().Error("Failed to create user", zap.String("email", params.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user")
	}

	zap.L().Info("User registered",
		zap.String("user_id", user.Id),
		zap.String("email", user.Email))

	if s.rewards.SignUpBonus.IsPositive() {
		// The account exists either way; a missing bonus is logged by creditBonus.
		_, _ = s.creditBonus(ctx, user.Id, signUpBonusTitle, s.rewards.SignUpBonus)
	}

	return toProfile(user), nil
}

// Authenticate checks the password. Unknown email and wrong password return the same error.
func (s *RewardsService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		zap.L().Error("User lookup failed during login", zap.Error(err))
		return nil, fmt.Errorf("failed to authenticate")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		zap.L().Debug("Password mismatch", zap.String("user_id", user.Id))
		return nil, ErrInvalidCredentials
	}
	return toProfile(user), nil
}

func (s *RewardsService) GetProfile(ctx context.Context, userId string) (*models.Profile, error) {
	if userId == "" {
		return nil, invalidInput("user_id is required")
	}
	user, err := s.requireUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

func toProfile(user *models.User) *models.Profile {
	name := user.Name
	if name == "" {
		name = "User"
	}
	return &models.Profile{
		Id:           user.Id,
		Name:         name,
		Email:        user.Email,
		ReferralCode: user.ReferralCode,
		Role:         user.Role,
	}
}

// requireUser loads the user or returns an error wrapping store.ErrUserNotFound
func (s *RewardsService) requireUser(ctx context.Context, userId string) (*models.User, error) {
	user, err := s.store.GetUserById(ctx, userId)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		zap.L().Error("User lookup failed", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("failed to look up user")
	}
	return user, nil
}

// RequireAdmin returns ErrForbidden unless the user holds the admin role
func (s *RewardsService) RequireAdmin(ctx context.Context, userId string) error {
	if userId == "" {
		return ErrForbidden
	}
	user, err := s.requireUser(ctx, userId)
	if err != nil {
		return err
	}
	if !user.IsAdmin() {
		zap.L().Warn("Admin access denied", zap.String("user_id", userId))
		return ErrForbidden
	}
	return nil
}

func newReferralCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "RC" + strings.ToUpper(id[:8])
}
