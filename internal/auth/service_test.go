package auth

import (
	"context"
	"testing"

	"gorm.io/gorm"

	pkgauth "github.com/capitlshop/storefront-backend/pkg/auth"
	"github.com/capitlshop/storefront-backend/pkg/config"
	"github.com/capitlshop/storefront-backend/pkg/db/models"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
)

type stubUsers struct {
	byEmail map[string]*models.User
}

func newStubUsers() *stubUsers {
	return &stubUsers{byEmail: map[string]*models.User{}}
}

func (r *stubUsers) Create(ctx context.Context, user *models.User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := r.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testConfigs() (config.JWTConfig, config.PasswordConfig) {
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "capitlshop-test",
		ExpirationMinutes: 60,
	}
	// Low-cost argon parameters keep the test fast.
	passwordCfg := config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	return jwtCfg, passwordCfg
}

func newTestService(t *testing.T) (Service, *stubUsers, config.JWTConfig) {
	t.Helper()

	users := newStubUsers()
	jwtCfg, passwordCfg := testConfigs()
	svc, err := NewService(users, jwtCfg, passwordCfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, users, jwtCfg
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users, jwtCfg := newTestService(t)
	registered, err := svc.Register(ctx, RegisterRequest{
		Email:     "  Ada@Example.com ",
		Password:  "correct horse",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if registered.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", registered.Email)
	}
	if registered.Token == "" {
		t.Fatal("expected a token")
	}
	if _, ok := users.byEmail["ada@example.com"]; !ok {
		t.Fatal("user not persisted")
	}

	session, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(jwtCfg, session.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID.String() != registered.UserID {
		t.Fatalf("token user %s, want %s", claims.UserID, registered.UserID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	req := RegisterRequest{Email: "ada@example.com", Password: "correct horse"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	_, err := svc.Register(context.Background(), RegisterRequest{Email: "ada@example.com", Password: "short"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _, _ := newTestService(t)
	if _, err := svc.Register(ctx, RegisterRequest{Email: "ada@example.com", Password: "correct horse"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []LoginRequest{
		{Email: "ada@example.com", Password: "wrong horse"},
		{Email: "nobody@example.com", Password: "correct horse"},
		{Email: "", Password: ""},
	}
	for _, req := range cases {
		_, err := svc.Login(ctx, req)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("login %+v: expected unauthorized, got %v", req, err)
		}
		if appErr.Message() != invalidCredentialsMessage {
			t.Fatalf("message leaks detail: %q", appErr.Message())
		}
	}
}
