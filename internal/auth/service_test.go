package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/azatkul/docvault/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenSecret: "unit-test-secret-32-bytes-long!!",
		AccessTokenTTL:    time.Hour,
		BcryptCost:        4, // minimum cost keeps tests fast
	}
}

type fakeUserStore struct {
	users map[string]User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash string) (User, error) {
	if _, exists := f.users[email]; exists {
		return User{}, ErrEmailAlreadyExists
	}
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[email] = user
	return user, nil
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (User, error) {
	user, ok := f.users[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	service := NewService(newFakeUserStore(), testConfig())
	ctx := context.Background()

	registered, err := service.Register(ctx, Credentials{Email: "A@X.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if registered.User.Email != "a@x.com" {
		t.Fatalf("expected lowercased email, got %q", registered.User.Email)
	}
	if registered.User.PasswordHash != "" {
		t.Fatalf("password hash must not leak in results")
	}

	logged, err := service.Login(ctx, Credentials{Email: "a@x.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := service.ValidateAccessToken(logged.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken returned error: %v", err)
	}
	if claims.Email != "a@x.com" {
		t.Fatalf("unexpected principal in claims: %q", claims.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	service := NewService(newFakeUserStore(), testConfig())
	ctx := context.Background()

	if _, err := service.Register(ctx, Credentials{Email: "a@x.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := service.Login(ctx, Credentials{Email: "a@x.com", Password: "wrong-pass-1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := NewService(newFakeUserStore(), testConfig())
	ctx := context.Background()

	if _, err := service.Register(ctx, Credentials{Email: "a@x.com", Password: "s3cret-pass"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	_, err := service.Register(ctx, Credentials{Email: "a@x.com", Password: "another-pass"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	store := newFakeUserStore()
	service := NewService(store, testConfig())
	ctx := context.Background()

	result, err := service.Register(ctx, Credentials{Email: "a@x.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	service.nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := service.ValidateAccessToken(result.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	service := NewService(newFakeUserStore(), testConfig())

	for _, token := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := service.ValidateAccessToken(token); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized for %q, got %v", token, err)
		}
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := NewService(newFakeUserStore(), testConfig())

	_, err := service.Register(context.Background(), Credentials{Email: "a@x.com", Password: "short"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
