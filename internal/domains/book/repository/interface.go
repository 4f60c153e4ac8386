package repository

import (
	"context"

	"library-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

// RepositoryInterface defines book persistence operations.
type RepositoryInterface interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	GetAll(ctx context.Context, filter model.BookFilter) ([]model.Book, int64, error)
	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// ListAll returns every book ordered by title, for export.
	ListAll(ctx context.Context) ([]model.Book, error)
	// ListMissingCovers returns books without a cover URL, capped at limit.
	ListMissingCovers(ctx context.Context, limit int) ([]model.Book, error)
	UpdateCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error
}
