// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (business) → validates, enforces rules, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept primitives and return domain records and apperror
// values; they know nothing about HTTP. Handlers translate the domain
// outcomes to status codes. Repositories are injected as interfaces so
// tests can swap in in-memory fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/hiroyoshii/twitter-clone-api/internal/apperror"
	"github.com/hiroyoshii/twitter-clone-api/internal/auth"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/repository"
)

// Validation bounds for registration.
const (
	MinPasswordLength = 8
	MinUserIDLength   = 3
	MaxUserIDLength   = 50
	MaxUserNameLength = 100
)

// RegisterInput is the payload for AuthService.Register. Optional profile
// fields stay nil when the client omits them.
type RegisterInput struct {
	Email            string
	Password         string
	UserID           string
	UserName         string
	PhoneNumber      *string
	SelfIntroduction *string
	Place            *string
	Birthday         *string
	ProfileImg       *string
	AvatarImg        *string
}

// AuthService handles registration, login and session lookups.
type AuthService struct {
	users     repository.UserRepository
	sessions  *auth.SessionService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	sessions *auth.SessionService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		passwords: passwords,
		logger:    logger,
	}
}

// Register validates the payload, hashes the password and creates the
// account. Duplicate e_mail or user_id comes back as a Conflict from the
// repository. The plaintext password is hashed here and never stored or
// logged anywhere.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.UserID = strings.TrimSpace(in.UserID)
	in.UserName = strings.TrimSpace(in.UserName)

	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperror.ValidationFailed("e_mail", "a valid e-mail address is required")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(in.UserID) < MinUserIDLength || len(in.UserID) > MaxUserIDLength {
		return nil, apperror.ValidationFailed("user_id",
			fmt.Sprintf("user id must be between %d and %d characters", MinUserIDLength, MaxUserIDLength))
	}
	if in.UserName == "" || len(in.UserName) > MaxUserNameLength {
		return nil, apperror.ValidationFailed("user_name",
			fmt.Sprintf("user name must be between 1 and %d characters", MaxUserNameLength))
	}
	if in.Birthday != nil {
		if _, err := time.Parse("2006-01-02", *in.Birthday); err != nil {
			return nil, apperror.ValidationFailed("birthday", "birthday must be formatted YYYY-MM-DD")
		}
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password could not be processed")
	}

	user := &model.User{
		UserID:           in.UserID,
		Email:            in.Email,
		PasswordHash:     hash,
		UserName:         in.UserName,
		PhoneNumber:      in.PhoneNumber,
		SelfIntroduction: in.SelfIntroduction,
		Place:            in.Place,
		Birthday:         in.Birthday,
		ProfileImg:       in.ProfileImg,
		AvatarImg:        in.AvatarImg,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("userID", user.UserID))
	return user, nil
}

// Login authenticates by e-mail and password and mints a session token.
//
// ANTI-ENUMERATION:
// An unknown e-mail and a wrong password both return the same
// apperror.Unauthorized through the same code path. Nothing in the error,
// the logs' level, or the response shape tells a caller which it was, so
// the login endpoint can't be used to probe which addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperror.Unauthorized()
	}

	token, err := s.sessions.Mint(user.UserID)
	if err != nil {
		return nil, "", fmt.Errorf("service/auth: minting session for %s: %w", user.UserID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.UserID))
	return user, token, nil
}

// authenticate returns the user when the credentials check out, nil when
// they don't, and an error only for storage failures.
func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}
	if user == nil {
		return nil, nil
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, nil
	}
	return user, nil
}

// CurrentUser resolves a verified session subject to the full user record.
// A handle that no longer resolves (e.g. token outlived the database) is
// an Unauthorized, not a NotFound — the session is what's invalid.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", userID, err)
	}
	if user == nil {
		return nil, apperror.Unauthorized()
	}
	return user, nil
}
