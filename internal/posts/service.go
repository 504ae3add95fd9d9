package posts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mentally-gamez-soft/ws-blog/internal/events"
	"github.com/mentally-gamez-soft/ws-blog/internal/storage"
)

const contentType = "text/markdown"

type Service struct {
	store     Store
	resolver  *Resolver
	storage   storage.Storage
	cache     Cache
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(store Store, st storage.Storage, cache Cache, publisher events.Publisher, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &Service{
		store:     store,
		resolver:  NewResolver(store, logger),
		storage:   st,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*Post, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post := &Post{AuthorID: in.AuthorID, Title: in.Title, Status: Draft}
	if err := s.resolver.Save(ctx, post); err != nil {
		return nil, err
	}

	if in.Content != "" {
		if err := s.uploadContent(ctx, post, in.Content); err != nil {
			// Drop the row so a retried create gets the same slug back.
			if delErr := s.store.Delete(ctx, post.ID); delErr != nil {
				s.logger.Error("remove post after failed upload", "post_id", post.ID, "error", delErr)
			}
			return nil, err
		}
	}
	s.logger.Info("post created", "post_id", post.ID, "slug", post.Slug)
	return post, nil
}

func (s *Service) GetPostBySlug(ctx context.Context, slug string) (*Post, error) {
	cached, ok, err := s.cache.Get(ctx, slug)
	if err != nil {
		s.logger.Warn("cache get failed", "slug", slug, "error", err)
	} else if ok {
		return cached, nil
	}

	post, err := s.resolver.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, post); err != nil {
		s.logger.Warn("cache set failed", "slug", slug, "error", err)
	}
	return post, nil
}

// GetPostContent returns the stored body of a post, empty when it has none.
func (s *Service) GetPostContent(ctx context.Context, slug string) ([]byte, error) {
	post, err := s.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	rc, err := s.storage.Download(ctx, ContentKey(post.ID))
	if errors.Is(err, storage.ErrNotFound) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return body, nil
}

func (s *Service) ListPosts(ctx context.Context, page, perPage int, status *Status) (*ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage

	posts, err := s.store.List(ctx, ListParams{
		Limit:  perPage,
		Offset: offset,
		Status: status,
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*Post{}
	}

	total, err := s.store.Count(ctx, status)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return &ListResult{
		Posts:      posts,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// UpdatePost changes the title and/or body of a post. The slug is kept even
// when the title changes; use ReslugPost to derive a new one.
//
// The body is written before the row, so a failed storage write leaves the
// post untouched. A row write that fails after the body was stored leaves the
// new body with the old title; repeating the request completes it.
func (s *Service) UpdatePost(ctx context.Context, slug string, in UpdatePostInput) (*Post, error) {
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	post, err := s.resolver.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		if *in.Content == "" {
			if err := s.storage.Delete(ctx, ContentKey(post.ID)); err != nil {
				return nil, fmt.Errorf("delete from s3: %w", err)
			}
		} else if err := s.uploadContent(ctx, post, *in.Content); err != nil {
			return nil, err
		}
	}

	if in.Title != nil && *in.Title != post.Title {
		post.Title = *in.Title
		if err := s.resolver.Save(ctx, post); err != nil {
			return nil, err
		}
	}

	s.invalidate(ctx, slug)
	return post, nil
}

// ReslugPost clears the slug of a post and saves it, deriving a fresh slug
// from its current title with the same collision handling as creation.
func (s *Service) ReslugPost(ctx context.Context, slug string) (*Post, error) {
	post, err := s.resolver.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	post.ClearSlug()
	if err := s.resolver.Save(ctx, post); err != nil {
		return nil, err
	}

	s.invalidate(ctx, slug, post.Slug)
	s.logger.Info("post reslugged", "post_id", post.ID, "old_slug", slug, "slug", post.Slug)
	return post, nil
}

func (s *Service) DeletePost(ctx context.Context, slug string) error {
	post, err := s.resolver.GetBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, post.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, ContentKey(post.ID)); err != nil {
		s.logger.Warn("delete content failed", "post_id", post.ID, "error", err)
	}
	s.invalidate(ctx, slug)
	return nil
}

func (s *Service) PublishPost(ctx context.Context, slug string) (*Post, error) {
	post, err := s.store.Publish(ctx, slug)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, slug)

	e := events.NewPostPublished(post.ID, post.AuthorID, post.Slug, post.Title)
	if err := s.publisher.PublishPostPublished(ctx, e); err != nil {
		s.logger.Error("publish event failed", "post_id", post.ID, "error", err)
	}
	return post, nil
}

func (s *Service) uploadContent(ctx context.Context, post *Post, content string) error {
	if err := s.storage.Upload(ctx, ContentKey(post.ID), strings.NewReader(content), contentType); err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}
	post.Content = content
	return nil
}

func (s *Service) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Delete(ctx, slugs...); err != nil {
		s.logger.Warn("cache invalidate failed", "slugs", slugs, "error", err)
	}
}
