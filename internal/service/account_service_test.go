package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impronta-api/internal/auth/password"
	"impronta-api/internal/auth/token"
	"impronta-api/internal/domain"
	"impronta-api/internal/repository"
)

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.User

	getByEmailErr error
	createErr     error
	hideOnReload  bool
}

func newMemUsers() *memUsers {
	return &memUsers{rows: make(map[int64]domain.User)}
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return 0, m.createErr
	}
	for _, row := range m.rows {
		if row.Email == user.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	row := *user
	row.ID = m.nextID
	row.CreatedAt = &now
	row.UpdatedAt = &now
	m.rows[row.ID] = row
	return row.ID, nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getByEmailErr != nil {
		return nil, m.getByEmailErr
	}
	for _, row := range m.rows {
		if row.Email == email {
			u := row
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok || m.hideOnReload {
		return nil, repository.ErrNotFound
	}
	return &row, nil
}

type fixture struct {
	users  *memUsers
	codec  *token.Codec
	hasher *password.Hasher
	svc    AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := token.NewCodec([]byte("secret"), 15*time.Minute)
	require.NoError(t, err)
	hasher := password.NewHasherWithParams(password.Params{N: 1024, R: 8, P: 1, KeyLen: 64})
	users := newMemUsers()
	return &fixture{
		users:  users,
		codec:  codec,
		hasher: hasher,
		svc:    NewAccountService(users, hasher, codec),
	}
}

func strPtr(s string) *string { return &s }

func TestRegister(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    "  Artist@Gallery.COM ",
		Password: " longenough1 ",
		Name:     strPtr("  Frida  "),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.User.ID)
	assert.Equal(t, "artist@gallery.com", res.User.Email)
	require.NotNil(t, res.User.Name)
	assert.Equal(t, "Frida", *res.User.Name)
	assert.Empty(t, res.User.PasswordHash)
	require.NotNil(t, res.User.CreatedAt)

	claims, err := f.codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
	assert.Equal(t, "artist@gallery.com", claims["email"])

	stored := f.users.rows[1]
	assert.True(t, f.hasher.Verify("longenough1", stored.PasswordHash))
	assert.NotContains(t, stored.PasswordHash, "longenough1")
}

func TestRegisterPasswordLength(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "1234567"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "12345678"})
	require.NoError(t, err)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "c@b.com", Password: "   1234567   "})
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "d@b.com", Password: strings.Repeat("p", 256)})
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "e@b.com", Password: strings.Repeat("p", 255)})
	require.NoError(t, err)
}

func TestRegisterInvalidEmail(t *testing.T) {
	f := newFixture(t)

	for _, email := range []string{"", "   ", "plain", "a@b", "@b.com", "a@.com", "a b@c.com", "a@b@c.com"} {
		_, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: "longenough1"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "email %q", email)
		assert.Equal(t, "email", verr.Field)
	}
}

func TestRegisterName(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1", Name: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, res.User.Name)

	res, err = f.svc.Register(context.Background(), RegisterInput{Email: "b@b.com", Password: "longenough1"})
	require.NoError(t, err)
	assert.Nil(t, res.User.Name)

	var verr *ValidationError
	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "c@b.com", Password: "longenough1", Name: strPtr("   ")})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = f.svc.Register(context.Background(), RegisterInput{Email: "d@b.com", Password: "longenough1", Name: strPtr(strings.Repeat("n", 256))})
	require.ErrorAs(t, err, &verr)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	require.NoError(t, err)

	for _, email := range []string{"a@b.com", "A@B.COM", "  a@b.com  "} {
		_, err = f.svc.Register(context.Background(), RegisterInput{Email: email, Password: "longenough2"})
		assert.ErrorIs(t, err, ErrEmailTaken, "email %q", email)
	}
}

func TestRegisterDuplicateRejectedByStore(t *testing.T) {
	f := newFixture(t)
	f.users.createErr = repository.ErrDuplicateEmail

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterFallsBackWhenReloadIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.users.hideOnReload = true

	res, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1", Name: strPtr("Ana")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.User.ID)
	assert.Equal(t, "a@b.com", res.User.Email)
	assert.Equal(t, "Ana", *res.User.Name)
	assert.Nil(t, res.User.CreatedAt)
	assert.Empty(t, res.User.PasswordHash)
}

func TestRegisterStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.users.getByEmailErr = errors.New("connection refused")

	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailTaken)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	require.NoError(t, err)

	res, err := f.svc.Login(context.Background(), LoginInput{Email: " A@b.com", Password: "longenough1 "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.User.ID)
	assert.Empty(t, res.User.PasswordHash)

	claims, err := f.codec.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims["sub"])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "wrongpassword"})
	_, unknownEmail := f.svc.Login(context.Background(), LoginInput{Email: "nobody@b.com", Password: "longenough1"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginWithoutStoredHash(t *testing.T) {
	f := newFixture(t)
	f.users.rows[1] = domain.User{ID: 1, Email: "a@b.com"}

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "longenough1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	cases := []LoginInput{
		{Email: "bad", Password: "longenough1"},
		{Email: "a@b.com", Password: ""},
		{Email: "a@b.com", Password: "    "},
		{Email: "a@b.com", Password: strings.Repeat("p", 256)},
	}
	for _, in := range cases {
		_, err := f.svc.Login(context.Background(), in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "input %+v", in)
	}

	// short passwords are not rejected at login, they simply do not match
	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@b.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)
	reg, err := f.svc.Register(context.Background(), RegisterInput{Email: "a@b.com", Password: "longenough1"})
	require.NoError(t, err)

	user, err := f.svc.WhoAmI(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	delete(f.users.rows, reg.User.ID)
	_, err = f.svc.WhoAmI(context.Background(), reg.User.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
