package auth

import (
	"context"
	"fmt"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/database"
)

// usersCollection is the store document holding all user records.
const usersCollection = "users"

// UserRepository defines the data access contract for user accounts.
// The service layer calls these methods -- it never touches the store.
type UserRepository interface {
	// List returns every user record.
	List(ctx context.Context) ([]User, error)

	// FindByID returns the user with the given ID, or NotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername returns the user with the given username, or NotFound.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int, error)

	// Create appends a new user record.
	Create(ctx context.Context, user *User) error

	// Update replaces the record with the same ID, or NotFound.
	Update(ctx context.Context, user *User) error
}

// userRepository implements UserRepository over the flat-file store.
// User records hold no encrypted fields -- the password hash is bcrypt,
// not an envelope -- so no codec applies here.
type userRepository struct {
	store *database.Store
}

// NewUserRepository creates a user repository backed by the given store.
func NewUserRepository(store *database.Store) UserRepository {
	return &userRepository{store: store}
}

// List returns every user record.
func (r *userRepository) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.store.Read(usersCollection, &users); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading users: %w", err))
	}
	return users, nil
}

// FindByID returns the user with the given ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

// FindByUsername returns the user with the given username.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, apperror.NewNotFound("user not found")
}

// Count returns the number of registered users.
func (r *userRepository) Count(ctx context.Context) (int, error) {
	users, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// Create appends a new user record.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	users = append(users, *user)
	if err := r.store.Write(usersCollection, users); err != nil {
		return apperror.NewInternal(fmt.Errorf("writing users: %w", err))
	}
	return nil
}

// Update replaces the record with the same ID.
func (r *userRepository) Update(ctx context.Context, user *User) error {
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if users[i].ID == user.ID {
			users[i] = *user
			if err := r.store.Write(usersCollection, users); err != nil {
				return apperror.NewInternal(fmt.Errorf("writing users: %w", err))
			}
			return nil
		}
	}
	return apperror.NewNotFound("user not found")
}
