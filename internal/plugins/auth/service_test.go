package auth

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/crypto"
)

// mockUserRepository implements UserRepository with function fields.
type mockUserRepository struct {
	listFn           func(ctx context.Context) ([]User, error)
	findByIDFn       func(ctx context.Context, id string) (*User, error)
	findByUsernameFn func(ctx context.Context, username string) (*User, error)
	countFn          func(ctx context.Context) (int, error)
	createFn         func(ctx context.Context, user *User) error
	updateFn         func(ctx context.Context, user *User) error
}

func (m *mockUserRepository) List(ctx context.Context) ([]User, error) {
	return m.listFn(ctx)
}
func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return m.findByUsernameFn(ctx, username)
}
func (m *mockUserRepository) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}
func (m *mockUserRepository) Create(ctx context.Context, user *User) error {
	return m.createFn(ctx, user)
}
func (m *mockUserRepository) Update(ctx context.Context, user *User) error {
	return m.updateFn(ctx, user)
}

// mockReencrypter records re-encryption calls.
type mockReencrypter struct {
	calls   int
	oldKey  []byte
	newKey  []byte
}

func (m *mockReencrypter) ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error {
	m.calls++
	m.oldKey = oldKey
	m.newKey = newKey
	return nil
}

func newTestService(repo *mockUserRepository) (*authService, *crypto.SessionKeyStore) {
	keys := crypto.NewSessionKeyStore()
	tokens := NewTokenIssuer("tavern-test-secret", time.Hour)
	return NewAuthService(repo, keys, tokens, bcrypt.MinCost), keys
}

func emptyRepo() *mockUserRepository {
	return &mockUserRepository{
		findByUsernameFn: func(ctx context.Context, username string) (*User, error) {
			return nil, apperror.NewNotFound("user not found")
		},
		countFn:  func(ctx context.Context) (int, error) { return 0, nil },
		createFn: func(ctx context.Context, user *User) error { return nil },
	}
}

func TestRegisterFirstUserIsAdmin(t *testing.T) {
	repo := emptyRepo()
	var created *User
	repo.createFn = func(ctx context.Context, user *User) error {
		created = user
		return nil
	}
	svc, keys := newTestService(repo)

	user, token, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != RoleAdmin {
		t.Errorf("expected first user to be admin, got %q", user.Role)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if created == nil || created.PasswordHash == "correct horse" {
		t.Error("expected the password to be hashed before persisting")
	}

	// Registration is one of the two places the plaintext password is in
	// hand, so the session key must be cached here.
	key, ok := keys.Get(user.ID)
	if !ok {
		t.Fatal("expected session key to be cached after registration")
	}
	want := crypto.DeriveKey("correct horse", user.ID)
	if !bytes.Equal(key, want) {
		t.Error("cached key does not match the derived key")
	}
}

func TestRegisterSecondUserIsNotAdmin(t *testing.T) {
	repo := emptyRepo()
	repo.countFn = func(ctx context.Context) (int, error) { return 1, nil }
	svc, _ := newTestService(repo)

	user, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != RoleUser {
		t.Errorf("expected plain user role, got %q", user.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(emptyRepo())
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, RegisterInput{Username: "ab", Password: "password123"}); err == nil {
		t.Error("expected error for short username")
	}
	if _, _, err := svc.Register(ctx, RegisterInput{Username: "alice", Password: "short"}); err == nil {
		t.Error("expected error for short password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := emptyRepo()
	repo.findByUsernameFn = func(ctx context.Context, username string) (*User, error) {
		return &User{ID: "u1", Username: username}, nil
	}
	svc, _ := newTestService(repo)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Password: "password123",
	})
	if !apperror.IsCode(err, http.StatusConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestLoginCachesSessionKey(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := emptyRepo()
	repo.findByUsernameFn = func(ctx context.Context, username string) (*User, error) {
		return &User{ID: "u1", Username: "alice", PasswordHash: string(hash)}, nil
	}
	svc, keys := newTestService(repo)

	user, token, err := svc.Login(context.Background(), LoginInput{
		Username: "alice",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}

	key, ok := keys.Get(user.ID)
	if !ok {
		t.Fatal("expected session key to be cached after login")
	}
	if !bytes.Equal(key, crypto.DeriveKey("password123", "u1")) {
		t.Error("cached key does not match the derived key")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo := emptyRepo()
	repo.findByUsernameFn = func(ctx context.Context, username string) (*User, error) {
		return &User{ID: "u1", Username: "alice", PasswordHash: string(hash)}, nil
	}
	svc, keys := newTestService(repo)

	_, _, err := svc.Login(context.Background(), LoginInput{Username: "alice", Password: "nope"})
	if !apperror.IsCode(err, http.StatusUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if _, ok := keys.Get("u1"); ok {
		t.Error("expected no session key after failed login")
	}
}

func TestLoginUnknownUserSameError(t *testing.T) {
	svc, _ := newTestService(emptyRepo())

	_, _, err := svc.Login(context.Background(), LoginInput{Username: "ghost", Password: "whatever"})
	if !apperror.IsCode(err, http.StatusUnauthorized) {
		t.Errorf("expected the same unauthorized error as a wrong password, got %v", err)
	}
}

func TestVerifyTokenRoundTrip(t *testing.T) {
	svc, _ := newTestService(emptyRepo())
	token, err := svc.tokens.Issue("u1")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	userID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if userID != "u1" {
		t.Errorf("expected u1, got %q", userID)
	}

	if _, err := svc.VerifyToken("garbage"); !apperror.IsCode(err, http.StatusUnauthorized) {
		t.Errorf("expected unauthorized for garbage token, got %v", err)
	}
}

func TestChangePasswordReencrypts(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	user := &User{ID: "u1", Username: "alice", PasswordHash: string(hash)}
	var updated *User
	repo := emptyRepo()
	repo.findByIDFn = func(ctx context.Context, id string) (*User, error) { return user, nil }
	repo.updateFn = func(ctx context.Context, u *User) error {
		updated = u
		return nil
	}
	svc, keys := newTestService(repo)
	reenc := &mockReencrypter{}
	svc.RegisterReencrypter(reenc)

	err := svc.ChangePassword(context.Background(), "u1", "old password", "new password")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if reenc.calls != 1 {
		t.Fatalf("expected 1 re-encryption pass, got %d", reenc.calls)
	}
	if !bytes.Equal(reenc.oldKey, crypto.DeriveKey("old password", "u1")) {
		t.Error("re-encrypter got the wrong old key")
	}
	if !bytes.Equal(reenc.newKey, crypto.DeriveKey("new password", "u1")) {
		t.Error("re-encrypter got the wrong new key")
	}

	if updated == nil {
		t.Fatal("expected the user record to be updated")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new password")) != nil {
		t.Error("expected the stored hash to match the new password")
	}

	key, ok := keys.Get("u1")
	if !ok || !bytes.Equal(key, crypto.DeriveKey("new password", "u1")) {
		t.Error("expected the cached key to be replaced with the new one")
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	repo := emptyRepo()
	repo.findByIDFn = func(ctx context.Context, id string) (*User, error) {
		return &User{ID: "u1", PasswordHash: string(hash)}, nil
	}
	svc, _ := newTestService(repo)
	reenc := &mockReencrypter{}
	svc.RegisterReencrypter(reenc)

	err := svc.ChangePassword(context.Background(), "u1", "wrong", "new password")
	if !apperror.IsCode(err, http.StatusUnauthorized) {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if reenc.calls != 0 {
		t.Error("expected no re-encryption on failed verification")
	}
}
