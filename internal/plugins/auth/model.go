// Package auth handles user accounts, password security, and token-based
// authentication for Tavern. It owns the two credential paths: the bcrypt
// hash that is persisted, and the PBKDF2-derived field-encryption key that
// never is -- the key is recomputed from the plaintext password at every
// successful auth event and cached only in the process-wide SessionKeyStore.
//
// Tokens are long-lived JWTs, so a valid token can outlive the process
// that derived its owner's key. Every consumer of the key store must
// handle the absent-key case.
package auth

// User is a registered account as persisted in users.json. Field names
// are the stored JSON format and cannot change without migrating existing
// data files. The password hash rides in the "password" field, so this
// struct must never be serialized into a response -- use Profile() for
// anything client-facing.
type User struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"password"`
	DisplayName  string  `json:"displayName"`
	Avatar       *string `json:"avatar"`
	Banner       *string `json:"banner"`
	Bio          string  `json:"bio"`
	Role         string  `json:"role"`
	CreatedAt    int64   `json:"createdAt"` // Unix milliseconds.
}

// Roles. The first registered account becomes the admin.
const (
	RoleAdmin   = "admin"
	RoleUser    = "user"
	RoleCreator = "creator"
	RoleMedia   = "media"
)

// Profile is the client-safe view of a User: everything except the
// password hash.
type Profile struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Avatar      *string `json:"avatar"`
	Banner      *string `json:"banner"`
	Bio         string  `json:"bio"`
	Role        string  `json:"role"`
	CreatedAt   int64   `json:"createdAt"`
}

// Profile returns the client-safe view of the user.
func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Avatar:      u.Avatar,
		Banner:      u.Banner,
		Bio:         u.Bio,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
	}
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted to POST /api/auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// LoginRequest holds the data submitted to POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProfileUpdateRequest holds the patchable profile fields. Pointers
// distinguish "not submitted" from "clear this field".
type ProfileUpdateRequest struct {
	DisplayName *string `json:"displayName"`
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
	Avatar      *string `json:"avatar"`
	Banner      *string `json:"banner"`
}

// PasswordChangeRequest holds the data submitted to POST /api/auth/password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// --- Service Input DTOs ---

// RegisterInput is the validated input for creating a new user.
type RegisterInput struct {
	Username    string
	Password    string
	DisplayName string
}

// LoginInput is the validated input for authenticating a user.
type LoginInput struct {
	Username string
	Password string
}
