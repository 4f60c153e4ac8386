package repository

import (
	"context"

	"library-backend/internal/domains/author/model"

	"github.com/google/uuid"
)

// RepositoryInterface defines author persistence operations.
type RepositoryInterface interface {
	Create(ctx context.Context, a *model.Author) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	// GetByNormalizedName performs an exact match on the stored
	// normalized name. When several authors share a name the oldest
	// record wins.
	GetByNormalizedName(ctx context.Context, name string) (*model.Author, error)
	GetAll(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int64, error)
	Update(ctx context.Context, a *model.Author) (*model.Author, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
