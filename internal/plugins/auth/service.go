package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/crypto"
)

// Reencrypter re-encrypts one collection's sensitive fields for a user
// from oldKey to newKey. Implemented by the character, chat, and settings
// repositories and invoked on password change so a new password does not
// orphan ciphertext written under the old one.
type Reencrypter interface {
	ReencryptUser(ctx context.Context, userID string, oldKey, newKey []byte) error
}

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (user *User, token string, err error)
	Login(ctx context.Context, input LoginInput) (user *User, token string, err error)
	VerifyToken(token string) (userID string, err error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (*User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// authService implements AuthService with bcrypt hashing, JWT tokens, and
// the in-memory session key store.
type authService struct {
	repo         UserRepository
	keys         *crypto.SessionKeyStore
	tokens       *TokenIssuer
	bcryptCost   int
	reencrypters []Reencrypter
}

// NewAuthService creates a new auth service with the given dependencies.
// Reencrypters are registered afterwards (the plugins that own them are
// constructed later in the wiring order).
func NewAuthService(repo UserRepository, keys *crypto.SessionKeyStore, tokens *TokenIssuer, bcryptCost int) *authService {
	return &authService{
		repo:       repo,
		keys:       keys,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// RegisterReencrypter adds a collection re-encryptor consulted on
// password change. Call during startup wiring only.
func (s *authService) RegisterReencrypter(r Reencrypter) {
	s.reencrypters = append(s.reencrypters, r)
}

// Register creates a new user account. The first account on a fresh
// install becomes the admin. On success the field-encryption key is
// derived from the just-chosen password and cached, and a token is issued.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, string, error) {
	username := strings.TrimSpace(input.Username)
	if len(username) < 3 || len(username) > 32 {
		return nil, "", apperror.NewValidation("username must be between 3 and 32 characters")
	}
	if len(input.Password) < 8 {
		return nil, "", apperror.NewValidation("password must be at least 8 characters")
	}

	// Check the username before doing expensive hashing.
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return nil, "", apperror.NewConflict("username already taken")
	} else if !apperror.IsCode(err, 404) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, "", err
	}
	role := RoleUser
	if count == 0 {
		role = RoleAdmin
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Bio:          "",
		Role:         role,
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	// Cache the field-encryption key for this session. This is one of the
	// only places the plaintext password is in hand, so the key must be
	// derived here or not at all.
	s.keys.Put(user.ID, crypto.DeriveKey(input.Password, user.ID))

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", user.Role),
	)

	return user, token, nil
}

// Login authenticates a user by username and password. On success the
// field-encryption key is derived and cached, and a fresh token issued.
func (s *authService) Login(ctx context.Context, input LoginInput) (*User, string, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(input.Username))
	if err != nil {
		// Don't reveal whether the username exists -- generic message,
		// and burn a hash comparison so timing doesn't reveal it either.
		if apperror.IsCode(err, 404) {
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(input.Password))
			return nil, "", apperror.NewUnauthorized("invalid credentials")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", apperror.NewUnauthorized("invalid credentials")
	}

	// The password just verified -- derive and cache the encryption key
	// for this session.
	s.keys.Put(user.ID, crypto.DeriveKey(input.Password, user.ID))

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// VerifyToken validates a bearer token and returns the user ID it carries.
func (s *authService) VerifyToken(token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", apperror.NewUnauthorized("invalid or expired token")
	}
	return userID, nil
}

// GetUser returns a user by ID.
func (s *authService) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// GetUserByUsername returns a user by username, for public profile pages.
func (s *authService) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// UpdateProfile applies the submitted profile fields and returns the
// updated user. A username change is checked for collisions.
func (s *authService) UpdateProfile(ctx context.Context, userID string, req ProfileUpdateRequest) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		newName := strings.TrimSpace(*req.Username)
		if newName != user.Username {
			if len(newName) < 3 || len(newName) > 32 {
				return nil, apperror.NewValidation("username must be between 3 and 32 characters")
			}
			if _, err := s.repo.FindByUsername(ctx, newName); err == nil {
				return nil, apperror.NewConflict("username already taken")
			} else if !apperror.IsCode(err, 404) {
				return nil, err
			}
			user.Username = newName
		}
	}
	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}
	if req.Banner != nil {
		user.Banner = req.Banner
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, re-hashes the new one,
// and re-encrypts every collection the user owns from the old key to the
// new key. Without the re-encryption pass, data written under the old
// password would be permanently unreadable.
func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return apperror.NewValidation("password must be at least 8 characters")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperror.NewUnauthorized("current password is incorrect")
	}

	oldKey := crypto.DeriveKey(currentPassword, userID)
	newKey := crypto.DeriveKey(newPassword, userID)

	// Re-encrypt before swapping the hash: if a collection pass fails the
	// old password still works and nothing is orphaned.
	for _, r := range s.reencrypters {
		if err := r.ReencryptUser(ctx, userID, oldKey, newKey); err != nil {
			return apperror.NewInternal(fmt.Errorf("re-encrypting user data: %w", err))
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}
	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.keys.Put(userID, newKey)

	slog.Info("password changed",
		slog.String("user_id", userID),
	)
	return nil
}
