package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"

	"github.com/nexora-edu/learning-service/internal/auth"
	"github.com/nexora-edu/learning-service/internal/models"
	"github.com/nexora-edu/learning-service/internal/validator"
)

type authServiceFixture struct {
	repo    *mockRepository
	service AuthService
}

func newAuthServiceFixture() *authServiceFixture {
	repo := newMockRepository()
	service := NewAuthService(repo, auth.NewTokenService("unit-test-secret"), newTestLogger(), validator.New())
	return &authServiceFixture{repo: repo, service: service}
}

func approvedUser(password string) *models.User {
	hash, _ := HashPassword(password)
	return &models.User{
		ID:         10,
		Name:       "Asha",
		Email:      "asha@school.test",
		Password:   hash,
		Role:       models.RoleStudent,
		IsActive:   true,
		IsApproved: true,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("new account starts unapproved", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(nil, gorm.ErrRecordNotFound)
		f.repo.user.On("Create", ctx, mock.AnythingOfType("*models.User")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.User).ID = 10
			}).
			Return(nil)

		user, err := f.service.Register(ctx, &RegisterRequest{Name: "Asha", Email: "Asha@School.test", Password: "secret1"})

		require.NoError(t, err)
		assert.Equal(t, "asha@school.test", user.Email)
		assert.Equal(t, models.RoleStudent, user.Role)
		assert.False(t, user.IsApproved)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "secret1", user.Password)
	})

	t.Run("taken email is rejected", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(approvedUser("x"), nil)

		_, err := f.service.Register(ctx, &RegisterRequest{Name: "Asha", Email: "asha@school.test", Password: "secret1"})

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("short password fails validation", func(t *testing.T) {
		f := newAuthServiceFixture()

		_, err := f.service.Register(ctx, &RegisterRequest{Name: "Asha", Email: "asha@school.test", Password: "abc"})

		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a token", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(approvedUser("secret1"), nil)

		result, err := f.service.Login(ctx, &LoginRequest{Email: "asha@school.test", Password: "secret1"})

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, uint(10), result.User.ID)
	})

	t.Run("unknown email and bad password are indistinguishable", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.repo.user.On("GetByEmail", ctx, "ghost@school.test").Return(nil, gorm.ErrRecordNotFound)
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(approvedUser("secret1"), nil)

		_, unknownErr := f.service.Login(ctx, &LoginRequest{Email: "ghost@school.test", Password: "secret1"})
		_, badPassErr := f.service.Login(ctx, &LoginRequest{Email: "asha@school.test", Password: "wrong-pass"})

		assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
		assert.ErrorIs(t, badPassErr, ErrInvalidCredentials)
	})

	t.Run("deactivated account cannot log in", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := approvedUser("secret1")
		user.IsActive = false
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(user, nil)

		_, err := f.service.Login(ctx, &LoginRequest{Email: "asha@school.test", Password: "secret1"})

		assert.ErrorIs(t, err, ErrUserInactive)
	})

	t.Run("unapproved account cannot log in", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := approvedUser("secret1")
		user.IsApproved = false
		f.repo.user.On("GetByEmail", ctx, "asha@school.test").Return(user, nil)

		_, err := f.service.Login(ctx, &LoginRequest{Email: "asha@school.test", Password: "secret1"})

		assert.ErrorIs(t, err, ErrUserNotApproved)
	})
}
