package admin

import (
	"context"
	"testing"
	"time"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// mockUserRepository implements the lookups the admin service needs.
type mockUserRepository struct {
	auth.UserRepository
	users   map[string]*auth.User
	updated *auth.User
}

func (m *mockUserRepository) List(ctx context.Context) ([]auth.User, error) {
	out := make([]auth.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NewNotFound("user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *auth.User) error {
	m.updated = user
	return nil
}

func TestSetRole(t *testing.T) {
	repo := &mockUserRepository{users: map[string]*auth.User{
		"u1": {ID: "u1", Username: "bob", Role: auth.RoleUser},
	}}
	svc := NewAdminService(repo, func() {})

	profile, err := svc.SetRole(context.Background(), "u1", auth.RoleCreator)
	if err != nil {
		t.Fatalf("SetRole() error = %v", err)
	}
	if profile.Role != auth.RoleCreator {
		t.Errorf("expected creator role in response, got %q", profile.Role)
	}
	if repo.updated == nil || repo.updated.Role != auth.RoleCreator {
		t.Error("expected role change to be persisted")
	}
}

func TestSetRoleUnknownRole(t *testing.T) {
	repo := &mockUserRepository{users: map[string]*auth.User{}}
	svc := NewAdminService(repo, func() {})

	if _, err := svc.SetRole(context.Background(), "u1", "superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestListUsersReturnsProfiles(t *testing.T) {
	repo := &mockUserRepository{users: map[string]*auth.User{
		"u1": {ID: "u1", Username: "bob", PasswordHash: "$2a$10$secret", Role: auth.RoleUser},
	}}
	svc := NewAdminService(repo, func() {})

	profiles, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(profiles))
	}
	if profiles[0].Username != "bob" {
		t.Errorf("unexpected profile %+v", profiles[0])
	}
}

func TestRestartInvokesCallback(t *testing.T) {
	called := make(chan struct{})
	svc := NewAdminService(&mockUserRepository{}, func() { close(called) })

	svc.Restart(context.Background())

	select {
	case <-called:
	case <-time.After(2 * time.Second):
		t.Fatal("expected restart callback to run")
	}
}
