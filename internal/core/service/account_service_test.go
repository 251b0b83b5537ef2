package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/daily-journal/blog/internal/core/domain"
)

type stubAccountRepo struct {
	accounts  map[string]*domain.Account
	findErr   error
	createErr error
	creates   int
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	a, ok := r.accounts[email]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.creates++
	if r.createErr != nil {
		return nil, r.createErr
	}
	clone := *account
	clone.ID = "acc-" + account.Email
	r.accounts[account.Email] = &clone
	out := clone
	return &out, nil
}

type stubGuard struct {
	held       map[string]bool
	err        error
	released   []string
	acquiredOK int
}

func newStubGuard() *stubGuard { return &stubGuard{held: make(map[string]bool)} }

func (g *stubGuard) Acquire(_ context.Context, email string) (func(), bool, error) {
	if g.err != nil {
		return nil, false, g.err
	}
	if g.held[email] {
		return nil, false, nil
	}
	g.held[email] = true
	g.acquiredOK++
	return func() {
		delete(g.held, email)
		g.released = append(g.released, email)
	}, true, nil
}

func newAccountSvc(repo *stubAccountRepo, guard SignupGuard) *AccountService {
	svc := NewAccountService(repo, guard, discardLogger)
	svc.cost = bcrypt.MinCost
	return svc
}

func TestAccountService_Signup_HashesPassword(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	account, err := svc.Signup(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if account.PasswordHash == "pass123" {
		t.Fatal("expected password to be hashed")
	}
	stored := repo.accounts["alice@example.com"]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), passwordDigest("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAccountService_Signup_LongPassword(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)
	long := strings.Repeat("p", 100)

	if _, err := svc.Signup(context.Background(), "long@example.com", long); err != nil {
		t.Fatalf("Signup with a 100-byte password returned error: %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one insert, got %d", repo.creates)
	}

	if _, err := svc.Login(context.Background(), "long@example.com", long); err != nil {
		t.Fatalf("Login with the same password failed: %v", err)
	}
	// Differs only after byte 72.
	altered := long[:90] + "q" + long[91:]
	if _, err := svc.Login(context.Background(), "long@example.com", altered); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for a password differing past byte 72, got %v", err)
	}
}

func TestAccountService_Signup_AcceptsEmptyFields(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	if _, err := svc.Signup(context.Background(), "", ""); err != nil {
		t.Fatalf("empty input must not be rejected, got %v", err)
	}
}

func TestAccountService_Signup_Duplicate(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	_, _ = svc.Signup(context.Background(), "bob@example.com", "pass")
	if _, err := svc.Signup(context.Background(), "bob@example.com", "pass2"); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if repo.creates != 1 {
		t.Errorf("expected exactly one insert, got %d", repo.creates)
	}
}

func TestAccountService_Signup_LookupErrorAborts(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("mongo unavailable")
	svc := newAccountSvc(repo, nil)

	_, err := svc.Signup(context.Background(), "carol@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if repo.creates != 0 {
		t.Error("insert must not run when the existence check fails")
	}
}

func TestAccountService_Signup_ConcurrentInsertMapsToExists(t *testing.T) {
	repo := newStubAccountRepo()
	repo.createErr = domain.ErrAccountExists
	svc := newAccountSvc(repo, nil)

	if _, err := svc.Signup(context.Background(), "dan@example.com", "pass"); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
}

func TestAccountService_Signup_GuardHeldRejects(t *testing.T) {
	repo := newStubAccountRepo()
	guard := newStubGuard()
	guard.held["erin@example.com"] = true
	svc := newAccountSvc(repo, guard)

	if _, err := svc.Signup(context.Background(), "erin@example.com", "pass"); !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists while lock is held, got %v", err)
	}
	if repo.creates != 0 {
		t.Error("insert must not run while another signup holds the lock")
	}
}

func TestAccountService_Signup_GuardReleasedAfterSignup(t *testing.T) {
	repo := newStubAccountRepo()
	guard := newStubGuard()
	svc := newAccountSvc(repo, guard)

	if _, err := svc.Signup(context.Background(), "fay@example.com", "pass"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if len(guard.released) != 1 || guard.held["fay@example.com"] {
		t.Errorf("expected lock released, got released=%v held=%v", guard.released, guard.held)
	}
}

func TestAccountService_Signup_GuardErrorProceeds(t *testing.T) {
	repo := newStubAccountRepo()
	guard := newStubGuard()
	guard.err = errors.New("redis timeout")
	svc := newAccountSvc(repo, guard)

	if _, err := svc.Signup(context.Background(), "gus@example.com", "pass"); err != nil {
		t.Fatalf("expected signup to proceed without lock, got %v", err)
	}
	if repo.creates != 1 {
		t.Errorf("expected one insert, got %d", repo.creates)
	}
}

func TestAccountService_Login_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)

	if _, err := svc.Signup(context.Background(), "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	account, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if account.Email != "carol@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAccountService_Login_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newAccountSvc(repo, nil)
	_, _ = svc.Signup(context.Background(), "dave@example.com", "goodpass")

	_, wrongPass := svc.Login(context.Background(), "dave@example.com", "badpass")
	_, unknown := svc.Login(context.Background(), "ghost@example.com", "goodpass")

	if !errors.Is(wrongPass, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if !errors.Is(unknown, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
	}
}

func TestAccountService_Login_LookupError(t *testing.T) {
	repo := newStubAccountRepo()
	repo.findErr = errors.New("mongo unavailable")
	svc := newAccountSvc(repo, nil)

	_, err := svc.Login(context.Background(), "x@example.com", "pass")
	if err == nil || errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}
