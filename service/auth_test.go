package service

import (
	"context"
	"testing"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store/storetest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	fakes := storetest.New()
	svc := NewAuthService(fakes.Users)

	user, err := svc.Register(ctx, models.RegisterRequest{Name: " Ravi ", Email: "Ravi@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", user.Name)
	assert.Equal(t, "ravi@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.ProviderLocal, user.Provider)
	assert.NotEqual(t, "secret1", user.Password)

	_, err = svc.Register(ctx, models.RegisterRequest{Name: "Other", Email: "ravi@example.com", Password: "another"})
	assert.True(t, errors.Is(err, ErrEmailTaken))

	logged, err := svc.Login(ctx, models.LoginRequest{Email: "RAVI@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	require.NotNil(t, logged.LastLogin)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "ravi@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestLoginRejectsGoogleOnlyAndInactive(t *testing.T) {
	ctx := context.Background()
	fakes := storetest.New()
	svc := NewAuthService(fakes.Users)

	require.NoError(t, fakes.Users.Create(ctx, &models.User{Email: "g@example.com", GoogleID: "g-1", IsActive: true}))
	_, err := svc.Login(ctx, models.LoginRequest{Email: "g@example.com", Password: "whatever"})
	assert.True(t, errors.Is(err, ErrGoogleAccount))

	user, err := svc.Register(ctx, models.RegisterRequest{Name: "I", Email: "i@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = fakes.Users.Update(ctx, user.ID, map[string]interface{}{"isActive": false})
	require.NoError(t, err)
	_, err = svc.Login(ctx, models.LoginRequest{Email: "i@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrInactive))
}

func TestResolveGoogleUserOrder(t *testing.T) {
	ctx := context.Background()
	fakes := storetest.New()
	svc := NewAuthService(fakes.Users)

	// (c) nobody matches: a new account is created
	created, err := svc.ResolveGoogleUser(ctx, &models.GoogleProfile{
		Subject: "g-100", Email: "New@Example.com", EmailVerified: true, Name: "", Picture: "https://img/1",
	})
	require.NoError(t, err)
	assert.Equal(t, "g-100", created.GoogleID)
	assert.Equal(t, "new@example.com", created.Email)
	assert.Equal(t, "New", created.Name)
	assert.Equal(t, models.ProviderGoogle, created.Provider)

	// (a) same google id: same account, avatar refreshed
	again, err := svc.ResolveGoogleUser(ctx, &models.GoogleProfile{
		Subject: "g-100", Email: "changed@example.com", EmailVerified: true, Picture: "https://img/2",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "https://img/2", again.Avatar)
	assert.Equal(t, "new@example.com", again.Email)

	// (b) password account with the same email gets linked
	local, err := svc.Register(ctx, models.RegisterRequest{Name: "Meera", Email: "meera@example.com", Password: "secret1"})
	require.NoError(t, err)
	linked, err := svc.ResolveGoogleUser(ctx, &models.GoogleProfile{
		Subject: "g-200", Email: "meera@example.com", EmailVerified: true, Picture: "https://img/3",
	})
	require.NoError(t, err)
	assert.Equal(t, local.ID, linked.ID)
	assert.Equal(t, "g-200", linked.GoogleID)
	assert.Equal(t, models.ProviderGoogle, linked.Provider)
	assert.True(t, linked.HasPassword())

	_, err = svc.ResolveGoogleUser(ctx, &models.GoogleProfile{Email: "x@example.com"})
	assert.Error(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	fakes := storetest.New()
	svc := NewAuthService(fakes.Users)

	admin, created, err := svc.EnsureAdmin(ctx, "root@example.com", "changeme", "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, "Administrator", admin.Name)

	user, err := svc.Register(ctx, models.RegisterRequest{Name: "U", Email: "u@example.com", Password: "secret1"})
	require.NoError(t, err)
	promoted, created, err := svc.EnsureAdmin(ctx, "u@example.com", "", "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, user.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin())

	_, err = svc.Login(ctx, models.LoginRequest{Email: "u@example.com", Password: "secret1"})
	assert.NoError(t, err)

	_, _, err = svc.EnsureAdmin(ctx, "short@example.com", "123", "")
	assert.Error(t, err)
}

// racingUsers inserts a rival account just before the caller's insert lands.
type racingUsers struct {
	*storetest.UserStore
	rival *models.User
}

func (r *racingUsers) Create(ctx context.Context, u *models.User) error {
	if r.rival != nil {
		rival := r.rival
		r.rival = nil
		if err := r.UserStore.Create(ctx, rival); err != nil {
			return err
		}
	}
	return r.UserStore.Create(ctx, u)
}

func TestResolveGoogleUserConcurrentFirstSignIn(t *testing.T) {
	ctx := context.Background()
	fakes := storetest.New()
	users := &racingUsers{
		UserStore: fakes.Users,
		rival:     &models.User{GoogleID: "g-7", Email: "dup@example.com", Name: "dup", Provider: models.ProviderGoogle, IsActive: true},
	}
	svc := NewAuthService(users)

	user, err := svc.ResolveGoogleUser(ctx, &models.GoogleProfile{Subject: "g-7", Email: "dup@example.com", EmailVerified: true})
	require.NoError(t, err)
	rival, err := fakes.Users.FindByGoogleID(ctx, "g-7")
	require.NoError(t, err)
	assert.Equal(t, rival.ID, user.ID)
	require.NotNil(t, user.LastLogin)

	// The rival registered the email only: the retry links the Google id.
	users.rival = &models.User{Email: "local@example.com", Name: "local", Provider: models.ProviderLocal, IsActive: true}
	user, err = svc.ResolveGoogleUser(ctx, &models.GoogleProfile{Subject: "g-8", Email: "local@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "g-8", user.GoogleID)
	assert.Equal(t, models.ProviderGoogle, user.Provider)
}
