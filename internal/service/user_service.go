package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"safewatch/internal/cache"
	"safewatch/internal/model"
	"safewatch/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheKey = "users"
	userCacheTTL = 5 * time.Minute
)

// UserService exposes user directory operations.
type UserService interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	// EnsureUser creates the user with a hashed password if it does not
	// already exist. Used by the seed utility; returns true on creation.
	EnsureUser(ctx context.Context, username, password, role string) (bool, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	if data, _ := s.cache.Get(ctx, userCacheKey); data != nil {
		var cached []model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(users); err == nil {
		_ = s.cache.Set(ctx, userCacheKey, payload, userCacheTTL)
	}
	return users, nil
}

func (s *userService) EnsureUser(ctx context.Context, username, password, role string) (bool, error) {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return false, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Delete(ctx, userCacheKey)
	return true, nil
}
