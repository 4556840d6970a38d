package user

import (
	"context"

	"storefront-api/internal/domain"
)

type CreateUserInput struct {
	Email        string
	Name         string
	PasswordHash string
}

type Repository interface {
	Create(ctx context.Context, in CreateUserInput) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
