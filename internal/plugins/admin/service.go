// Package admin holds the administration endpoints: user management and
// a process restart for picking up new builds under a supervisor.
package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/tavernhq/tavern/internal/apperror"
	"github.com/tavernhq/tavern/internal/plugins/auth"
)

// validRoles is what PATCH role accepts.
var validRoles = map[string]bool{
	auth.RoleAdmin:   true,
	auth.RoleUser:    true,
	auth.RoleCreator: true,
	auth.RoleMedia:   true,
}

// AdminService handles administration operations.
type AdminService interface {
	// ListUsers returns every account as a safe public profile.
	ListUsers(ctx context.Context) ([]auth.Profile, error)

	// SetRole changes a user's role.
	SetRole(ctx context.Context, userID, role string) (*auth.Profile, error)

	// Restart asks the process to shut down gracefully. The supervisor
	// is expected to bring it back up.
	Restart(ctx context.Context)
}

// adminService implements AdminService.
type adminService struct {
	users   auth.UserRepository
	restart func()
}

// NewAdminService creates a new admin service. restart triggers a
// graceful shutdown when called.
func NewAdminService(users auth.UserRepository, restart func()) AdminService {
	return &adminService{users: users, restart: restart}
}

// ListUsers returns every account as a safe public profile.
func (s *adminService) ListUsers(ctx context.Context) ([]auth.Profile, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]auth.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].Profile())
	}
	return profiles, nil
}

// SetRole changes a user's role.
func (s *adminService) SetRole(ctx context.Context, userID, role string) (*auth.Profile, error) {
	if !validRoles[role] {
		return nil, apperror.NewValidation("unknown role")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("user role changed",
		slog.String("user_id", userID),
		slog.String("role", role),
	)
	profile := user.Profile()
	return &profile, nil
}

// Restart schedules a graceful shutdown shortly after the HTTP response
// has gone out.
func (s *adminService) Restart(ctx context.Context) {
	slog.Warn("restart requested by admin")
	go func() {
		time.Sleep(500 * time.Millisecond)
		s.restart()
	}()
}
