package comments

import (
	"context"
	"log/slog"

	"github.com/mentally-gamez-soft/ws-blog/internal/posts"
)

// PostFinder resolves the post a comment belongs to.
type PostFinder interface {
	GetPostBySlug(ctx context.Context, slug string) (*posts.Post, error)
}

type Service struct {
	repo   Repository
	posts  PostFinder
	logger *slog.Logger
}

func NewService(repo Repository, finder PostFinder, logger *slog.Logger) *Service {
	return &Service{repo: repo, posts: finder, logger: logger}
}

func (s *Service) AddComment(ctx context.Context, postSlug string, in AddCommentInput) (*Comment, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.Create(ctx, post.ID, in.AuthorID, in.Content)
	if err != nil {
		return nil, err
	}
	s.logger.Info("comment added", "post_id", post.ID, "comment_id", c.ID)
	return c, nil
}

// ListComments returns the comments of a post, oldest first.
func (s *Service) ListComments(ctx context.Context, postSlug string) ([]*Comment, error) {
	post, err := s.posts.GetPostBySlug(ctx, postSlug)
	if err != nil {
		return nil, err
	}
	out, err := s.repo.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*Comment{}
	}
	return out, nil
}
