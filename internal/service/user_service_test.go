package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

type fakeUsers struct {
	nextID int64
	byID   map[int64]*domain.User

	createErr error
	getErr    error
}

var _ repository.UserRepository = (*fakeUsers)(nil)

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byID: map[int64]*domain.User{}}
}

func (f *fakeUsers) Init(context.Context) error { return nil }

func (f *fakeUsers) Create(_ context.Context, user *domain.User) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == user.Email {
			return 0, errors.New("user already exists with this email")
		}
	}
	user.ID = f.nextID
	f.nextID++
	clone := *user
	f.byID[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, user := range f.byID {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	user, ok := f.byID[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	var users []domain.User
	for _, user := range f.byID {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(user.Name, filter.Search) {
			continue
		}
		users = append(users, *user)
	}
	return users, int64(len(users)), nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, id int64, updates domain.ProfileUpdate) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	if updates.Name != nil {
		user.Name = *updates.Name
	}
	if updates.Bio != nil {
		user.Bio = *updates.Bio
	}
	if updates.DateOfBirth != nil {
		user.DateOfBirth = updates.DateOfBirth
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUsers) RecordLogin(_ context.Context, id int64, at time.Time) error {
	user, ok := f.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	user.LoginCount++
	user.LastLogin = &at
	return nil
}

func (f *fakeUsers) SetResetToken(_ context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	user, ok := f.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = &expiresAt
	return nil
}

func (f *fakeUsers) GetByResetToken(_ context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	for _, user := range f.byID {
		if user.ResetTokenHash == tokenHash && user.ResetExpiresAt != nil && user.ResetExpiresAt.After(now) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, errors.New("user not found")
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	user, ok := f.byID[id]
	if !ok {
		return errors.New("user not found")
	}
	user.PasswordHash = passwordHash
	user.ResetTokenHash = ""
	user.ResetExpiresAt = nil
	return nil
}

func TestRegisterAssignsUserRole(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "owner@example.com")

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role)
	require.Empty(t, user.PasswordHash, "responses must not carry the hash")
	require.True(t, user.IsActive)
}

func TestRegisterOwnerEmailGetsOwnerRole(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "Owner@Example.com")

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleOwner, user.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterInput{Name: "Ann2", Email: "a@x.com", Password: "secret2"})
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewUserService(newFakeUsers(), "")

	cases := []RegisterInput{
		{Name: "", Email: "a@x.com", Password: "secret1"},
		{Name: "Ann", Email: "not-an-email", Password: "secret1"},
		{Name: "Ann", Email: "a@x.com", Password: ""},
		{Name: "Ann", Email: "a@x.com", Password: "short"},
	}
	for _, input := range cases {
		_, err := svc.Register(context.Background(), input)
		require.Error(t, err)
	}
}

func TestAuthenticate(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "A@X.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email)
	require.Equal(t, 1, user.LoginCount)
	require.NotNil(t, user.LastLogin)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	_, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownEmail(t *testing.T) {
	svc := NewUserService(newFakeUsers(), "")
	_, err := svc.Authenticate(context.Background(), "ghost@x.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateDeactivatedAccount(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	users.byID[registered.ID].IsActive = false

	_, err = svc.Authenticate(context.Background(), "a@x.com", "secret1")
	require.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestUpdateProfileRejectsEmptyName(t *testing.T) {
	svc := NewUserService(newFakeUsers(), "")
	empty := "  "
	_, err := svc.UpdateProfile(context.Background(), 1, domain.ProfileUpdate{Name: &empty})
	require.Error(t, err)
}

func TestPasswordResetRoundTrip(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	// only the hash is stored
	require.NotEqual(t, token, users.byID[registered.ID].ResetTokenHash)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "newsecret"))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID[registered.ID].PasswordHash), []byte("newsecret")))

	_, err = svc.Authenticate(context.Background(), "a@x.com", "newsecret")
	require.NoError(t, err)
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := NewUserService(newFakeUsers(), "")
	err := svc.ResetPassword(context.Background(), "deadbeef", "newsecret")
	require.ErrorIs(t, err, ErrResetTokenInvalid)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	users := newFakeUsers()
	svc := NewUserService(users, "")

	registered, err := svc.Register(context.Background(), RegisterInput{Name: "Ann", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.RequestPasswordReset(context.Background(), "a@x.com")
	require.NoError(t, err)

	expired := time.Now().UTC().Add(-time.Minute)
	users.byID[registered.ID].ResetExpiresAt = &expired

	require.ErrorIs(t, svc.ResetPassword(context.Background(), token, "newsecret"), ErrResetTokenInvalid)
}
