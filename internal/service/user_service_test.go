package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"safewatch/internal/model"
)

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything).Return([]model.User{
		{ID: 1, Username: "Health_Department", Role: model.RoleResolver},
	}, nil)

	svc := NewUserService(mockRepo, nil)
	users, err := svc.ListUsers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Health_Department", users[0].Username)
	mockRepo.AssertExpectations(t)
}

func TestUserService_EnsureUser(t *testing.T) {
	t.Run("creates missing user with hashed password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByUsername", mock.Anything, "Health_Department").Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Run(func(args mock.Arguments) {
			user := args.Get(1).(*model.User)
			assert.Equal(t, model.RoleResolver, user.Role)
			assert.NotEqual(t, "health123", user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("health123")))
		}).Return(nil)

		svc := NewUserService(mockRepo, nil)
		created, err := svc.EnsureUser(context.Background(), "Health_Department", "health123", model.RoleResolver)

		assert.NoError(t, err)
		assert.True(t, created)
		mockRepo.AssertExpectations(t)
	})

	t.Run("skips existing user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByUsername", mock.Anything, "Health_Department").Return(&model.User{Username: "Health_Department"}, nil)

		svc := NewUserService(mockRepo, nil)
		created, err := svc.EnsureUser(context.Background(), "Health_Department", "health123", model.RoleResolver)

		assert.NoError(t, err)
		assert.False(t, created)
		mockRepo.AssertExpectations(t)
	})
}
