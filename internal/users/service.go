package users

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentally-gamez-soft/ws-blog/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

// SignUp registers a user and announces it so the worker can send the
// welcome email. A failed announcement is logged; the user is kept.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*User, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.repo.Create(ctx, in.Name, in.Email)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", u.ID)

	if err := s.publisher.PublishUserSignedUp(ctx, events.NewUserSignedUp(u.ID, u.Name, u.Email)); err != nil {
		s.logger.Error("publish event failed", "user_id", u.ID, "error", err)
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	in := SignUpInput{Email: email}
	in.Normalize()
	return s.repo.GetByEmail(ctx, in.Email)
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*User{}
	}
	return users, nil
}

func (s *Service) SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*User, error) {
	u, err := s.repo.SetAdmin(ctx, id, isAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user admin flag changed", "user_id", u.ID, "is_admin", isAdmin)
	return u, nil
}
