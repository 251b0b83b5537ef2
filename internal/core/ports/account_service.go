package ports

import (
	"context"

	"github.com/daily-journal/blog/internal/core/domain"
)

type AccountService interface {
	Signup(ctx context.Context, email, password string) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (*domain.Account, error)
}
