package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"safewatch/internal/auth"
	"safewatch/internal/errors"
	"safewatch/internal/model"
	"safewatch/internal/repository"
)

// AuthService handles authentication operations.
type AuthService interface {
	// Login verifies the password and returns a signed identity token.
	Login(ctx context.Context, username, password string) (string, *model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login authenticates a user and returns a signed token.
func (s *authService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		// Unknown user and wrong password are indistinguishable to callers.
		return "", nil, errors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}
