package ports

import (
	"context"

	"github.com/daily-journal/blog/internal/core/domain"
)

// PostRepository defines persistence operations for blog posts.
type PostRepository interface {
	// FindAll returns every post in the store's natural order.
	FindAll(ctx context.Context) ([]*domain.Post, error)
	// FindByID returns domain.ErrPostNotFound when no post matches, including
	// when id is not a valid store key.
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	// Create inserts p and sets p.ID to the key assigned by the store.
	Create(ctx context.Context, p *domain.Post) error
	// DeleteByID removes exactly one post. It returns domain.ErrPostNotFound
	// when nothing was deleted.
	DeleteByID(ctx context.Context, id string) error
}
