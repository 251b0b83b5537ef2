package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/daily-journal/blog/internal/core/domain"
	"github.com/daily-journal/blog/internal/core/ports"
)

type PostService struct {
	repo   ports.PostRepository
	logger zerolog.Logger
}

func NewPostService(repo ports.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{repo: repo, logger: logger}
}

// ListPosts returns every stored post, unfiltered and unpaginated.
func (s *PostService) ListPosts(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("error getting posts")
		return nil, err
	}
	return posts, nil
}

// GetPost looks a post up by its store identifier.
func (s *PostService) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			s.logger.Info().Str("post_id", id).Msg("post not found")
		} else {
			s.logger.Error().Err(err).Str("post_id", id).Msg("error finding post")
		}
		return nil, err
	}
	return post, nil
}

// ComposePost stores a new post built verbatim from the form input and
// returns it with the identifier assigned by the store.
func (s *PostService) ComposePost(ctx context.Context, input ports.ComposePostInput) (*domain.Post, error) {
	post := &domain.Post{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).Msg("error posting new blog")
		return nil, err
	}

	s.logger.Info().Str("post_id", post.ID).Msg("new blog posted")
	return post, nil
}

// DeletePost removes a single post. domain.ErrPostNotFound is returned when
// nothing matched.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			s.logger.Info().Str("post_id", id).Msg("blog post not found")
		} else {
			s.logger.Error().Err(err).Str("post_id", id).Msg("error deleting blog post")
		}
		return err
	}

	s.logger.Info().Str("post_id", id).Msg("blog post deleted")
	return nil
}
