// AngelaMos | 2026
// service_test.go

package auth_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/auth-service/internal/auth"
	"github.com/carterperez-dev/auth-service/internal/core"
)

type fakeUserStore struct {
	users  map[string]*auth.UserInfo
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*auth.UserInfo)}
}

func (f *fakeUserStore) GetByEmail(
	_ context.Context,
	email string,
) (*auth.UserInfo, error) {
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", core.ErrNotFound)
}

func (f *fakeUserStore) GetByID(
	_ context.Context,
	id string,
) (*auth.UserInfo, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) Create(
	_ context.Context,
	email, passwordHash, name, role string,
) (*auth.UserInfo, error) {
	email = strings.ToLower(email)
	for _, u := range f.users {
		if u.Email == email {
			return nil, fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}

	if role == "" {
		role = "user"
	}

	f.nextID++
	now := time.Now()
	u := &auth.UserInfo{
		ID:           fmt.Sprintf("user-%d", f.nextID),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.users[u.ID] = u

	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) RecordLogin(
	_ context.Context,
	userID string,
) (time.Time, error) {
	u, ok := f.users[userID]
	if !ok {
		return time.Time{}, fmt.Errorf("update last login: %w", core.ErrNotFound)
	}
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
	return now, nil
}

func (f *fakeUserStore) UpdatePassword(
	_ context.Context,
	userID, passwordHash string,
) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserStore) deactivate(userID string) {
	delete(f.users, userID)
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "a@x.com",
		Password: "pw123secret",
		Name:     "Ann",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "a@x.com", created.Email)
	require.Equal(t, "user", created.Role)
	require.Nil(t, created.LastLoginAt)

	loggedIn, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "a@x.com",
		Password: "pw123secret",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, loggedIn.ID)

	_, err = svc.Login(ctx, auth.LoginRequest{
		Email:    "a@x.com",
		Password: "wrong password",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Register(ctx, auth.RegisterRequest{
		Email:    "a@x.com",
		Password: "other secret",
		Name:     "Impostor",
	})
	require.ErrorIs(t, err, auth.ErrEmailExists)
}

func TestRegister_DuplicateLeavesExistingRowIntact(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "dup@x.com",
		Password: "first secret",
		Name:     "Original",
	})
	require.NoError(t, err)

	_, err = svc.Register(ctx, auth.RegisterRequest{
		Email:    "DUP@X.COM",
		Password: "second secret",
		Name:     "Second",
	})
	require.ErrorIs(t, err, auth.ErrEmailExists)

	existing := store.users[created.ID]
	require.Equal(t, "Original", existing.Name)

	loggedIn, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "dup@x.com",
		Password: "first secret",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, loggedIn.ID)
}

func TestLogin_UnknownEmail(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(newFakeUserStore())

	_, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "nobody@x.com",
		Password: "whatever12",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "gone@x.com",
		Password: "pw123secret",
		Name:     "Gone",
	})
	require.NoError(t, err)

	store.deactivate(created.ID)

	// Correct password, but the account is no longer active.
	_, err = svc.Login(ctx, auth.LoginRequest{
		Email:    "gone@x.com",
		Password: "pw123secret",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogin_RecordsLastLogin(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "late@x.com",
		Password: "pw123secret",
		Name:     "Late",
	})
	require.NoError(t, err)

	before := time.Now()

	loggedIn, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "late@x.com",
		Password: "pw123secret",
	})
	require.NoError(t, err)
	require.NotNil(t, loggedIn.LastLoginAt)
	require.False(t, loggedIn.LastLoginAt.Before(before))

	stored, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLogin_FailureHasNoSideEffects(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "still@x.com",
		Password: "pw123secret",
		Name:     "Still",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginRequest{
		Email:    "still@x.com",
		Password: "not the password",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	stored, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, stored.LastLoginAt)
}

func TestRegister_SaltUniqueness(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	first, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "one@x.com",
		Password: "shared secret",
		Name:     "One",
	})
	require.NoError(t, err)

	second, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "two@x.com",
		Password: "shared secret",
		Name:     "Two",
	})
	require.NoError(t, err)

	require.NotEqual(
		t,
		store.users[first.ID].PasswordHash,
		store.users[second.ID].PasswordHash,
	)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newFakeUserStore()
	svc := auth.NewService(store)

	created, err := svc.Register(ctx, auth.RegisterRequest{
		Email:    "rotate@x.com",
		Password: "old password",
		Name:     "Rotate",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, created.ID, "wrong old", "new password1")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, created.ID, "old password", "new password1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginRequest{
		Email:    "rotate@x.com",
		Password: "old password",
	})
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	loggedIn, err := svc.Login(ctx, auth.LoginRequest{
		Email:    "rotate@x.com",
		Password: "new password1",
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, loggedIn.ID)
}

func TestChangePassword_UnknownUser(t *testing.T) {
	ctx := context.Background()
	svc := auth.NewService(newFakeUserStore())

	err := svc.ChangePassword(ctx, "missing", "whatever12", "new password1")
	require.ErrorIs(t, err, core.ErrNotFound)
}
