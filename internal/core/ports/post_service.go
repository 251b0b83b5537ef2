package ports

import (
	"context"

	"github.com/daily-journal/blog/internal/core/domain"
)

// ComposePostInput carries the compose form fields. None of them are validated.
type ComposePostInput struct {
	Title       string
	Description string
	ImageURL    string
}

// PostService defines use-case operations for the post catalog.
type PostService interface {
	ListPosts(ctx context.Context) ([]*domain.Post, error)
	GetPost(ctx context.Context, id string) (*domain.Post, error)
	ComposePost(ctx context.Context, input ComposePostInput) (*domain.Post, error)
	DeletePost(ctx context.Context, id string) error
}
