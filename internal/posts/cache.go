package posts

import "context"

// Cache keeps recently read posts by slug. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, slug string) (*Post, bool, error)
	Set(ctx context.Context, p *Post) error
	Delete(ctx context.Context, slugs ...string) error
}

type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*Post, bool, error) { return nil, false, nil }
func (NoopCache) Set(context.Context, *Post) error                 { return nil }
func (NoopCache) Delete(context.Context, ...string) error          { return nil }

var _ Cache = NoopCache{}
