package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/Roman-sleep/foodgram-project-react/domain"
	"github.com/Roman-sleep/foodgram-project-react/entities"
	"github.com/Roman-sleep/foodgram-project-react/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupService(t *testing.T) (UserService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.Follow{}))

	return NewUserService(NewUserRepository(db), jwt.NewJWTService()), db
}

func register(t *testing.T, svc UserService, username string) domain.UserResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
		Password:  "sup3r-secret",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	register(t, svc, "alice")

	_, err := svc.Register(ctx, domain.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice2",
		Password: "sup3r-secret",
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	_, err = svc.Register(ctx, domain.RegisterRequest{
		Email:    "alice2@example.com",
		Username: "alice",
		Password: "sup3r-secret",
	})
	assert.ErrorIs(t, err, domain.ErrUsernameAlreadyExists)
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	svc, db := setupService(t)

	resp := register(t, svc, "alice")

	var stored entities.User
	require.NoError(t, db.Where("username = ?", "alice").First(&stored).Error)
	assert.NotEqual(t, "sup3r-secret", stored.Password)
	assert.NotEmpty(t, stored.Password)
	assert.Equal(t, stored.ID.String(), resp.ID)
}

func TestLogin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	register(t, svc, "alice")

	resp, err := svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "sup3r-secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "sup3r-secret",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSubscribeRules(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	_, err := svc.Subscribe(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, domain.ErrSelfFollow)

	author, err := svc.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", author.Username)
	assert.True(t, author.IsSubscribed)

	_, err = svc.Subscribe(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyFollowing)

	var count int64
	require.NoError(t, db.Model(&entities.Follow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnsubscribe(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	err := svc.Unsubscribe(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrFollowNotFound)

	_, err = svc.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Unsubscribe(ctx, alice.ID, bob.ID))

	err = svc.Unsubscribe(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, domain.ErrFollowNotFound)
}

func TestGetSubscriptionsListsFollowedAuthorsOnly(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")
	carol := register(t, svc, "carol")
	register(t, svc, "dave")

	_, err := svc.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Subscribe(ctx, alice.ID, carol.ID)
	require.NoError(t, err)

	authors, count, err := svc.GetSubscriptions(ctx, alice.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	require.Len(t, authors, 2)
	for _, author := range authors {
		assert.Contains(t, []string{"bob", "carol"}, author.Username)
		assert.True(t, author.IsSubscribed)
	}
}

func TestGetUserByIDReportsSubscription(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	resp, err := svc.GetUserByID(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, resp.IsSubscribed)

	_, err = svc.Subscribe(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	resp, err = svc.GetUserByID(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, resp.IsSubscribed)

	_, err = svc.GetUserByID(ctx, "00000000-0000-0000-0000-000000000000", alice.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
