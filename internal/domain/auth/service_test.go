package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/c8r-platform/c8r-api/internal/domain/user"
	"github.com/c8r-platform/c8r-api/internal/pkg/jwt"
)

type testUserRepo struct {
	byEmail map[string]*user.User
	byID    map[uuid.UUID]*user.User
}

func newTestUserRepo() *testUserRepo {
	return &testUserRepo{
		byEmail: make(map[string]*user.User),
		byID:    make(map[uuid.UUID]*user.User),
	}
}

func (r *testUserRepo) Create(ctx context.Context, u *user.User) error {
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}
func (r *testUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.byID[id], nil
}
func (r *testUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.byEmail[email], nil
}
func (r *testUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID) error { return nil }
func (r *testUserRepo) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	u, ok := r.byID[id]
	if !ok {
		return 0, user.ErrUserNotFound
	}
	return u.C8RBalance, nil
}
func (r *testUserRepo) Debit(ctx context.Context, id uuid.UUID, amount int64) error  { return nil }
func (r *testUserRepo) Credit(ctx context.Context, id uuid.UUID, amount int64) error { return nil }

type testLedger struct {
	signupCalls []int64
	err         error
}

func (l *testLedger) RecordSignupBonus(ctx context.Context, userID uuid.UUID, amount int64) error {
	l.signupCalls = append(l.signupCalls, amount)
	return l.err
}

func newTestService(repo user.Repository, ledger Ledger) *Service {
	jwtService := jwt.NewService("test-secret", 15*time.Minute, 168*time.Hour)
	return NewService(repo, jwtService, nil, ledger, 2500)
}

func TestRegister_SeedsSignupBonus(t *testing.T) {
	repo := newTestUserRepo()
	ledger := &testLedger{}
	svc := newTestService(repo, ledger)

	result, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "Nova@Example.com",
		Name:     "Nova",
		Password: "correct-horse-battery",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if result.User.C8RBalance != 2500 {
		t.Fatalf("expected welcome bonus of 2500, got %d", result.User.C8RBalance)
	}
	if result.User.Email != "nova@example.com" {
		t.Fatalf("expected normalized email, got %q", result.User.Email)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatal("expected token pair")
	}
	if len(ledger.signupCalls) != 1 || ledger.signupCalls[0] != 2500 {
		t.Fatalf("expected signup bonus recorded once with 2500, got %v", ledger.signupCalls)
	}

	stored := repo.byEmail["nova@example.com"]
	if stored == nil || stored.C8RBalance != 2500 {
		t.Fatal("expected user row seeded with the bonus balance")
	}
	if stored.PasswordHash == "correct-horse-battery" {
		t.Fatal("expected password to be hashed")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newTestUserRepo()
	svc := newTestService(repo, &testLedger{})

	req := &RegisterRequest{Email: "dup@example.com", Name: "Dup", Password: "password123"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "DUP@example.com", Name: "Dup Again", Password: "password123",
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Fatalf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegister_SucceedsWhenLedgerWriteFails(t *testing.T) {
	repo := newTestUserRepo()
	ledger := &testLedger{err: errors.New("redis down")}
	svc := newTestService(repo, ledger)

	result, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "ok@example.com", Name: "Ok", Password: "password123",
	})
	if err != nil {
		t.Fatalf("expected register to succeed despite ledger failure, got %v", err)
	}
	if result.User.C8RBalance != 2500 {
		t.Fatalf("expected bonus balance regardless, got %d", result.User.C8RBalance)
	}
}

func TestLogin_VerifiesCredentials(t *testing.T) {
	repo := newTestUserRepo()
	svc := newTestService(repo, &testLedger{})

	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email: "user@example.com", Name: "User", Password: "password123",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), &LoginRequest{
		Email: "user@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Tokens.AccessToken == "" {
		t.Fatal("expected access token")
	}

	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "user@example.com", Password: "wrong",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(context.Background(), &LoginRequest{
		Email: "ghost@example.com", Password: "password123",
	}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRefresh_RequiresToken(t *testing.T) {
	svc := newTestService(newTestUserRepo(), &testLedger{})

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, ErrRefreshTokenRequired) {
		t.Fatalf("expected ErrRefreshTokenRequired, got %v", err)
	}
	// Without Redis there is no stored hash to match
	if _, err := svc.Refresh(context.Background(), "deadbeef"); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("expected ErrInvalidRefreshToken, got %v", err)
	}
}
