package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"library-backend/internal/domains/book/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const (
	bookCacheKeyPrefix = "book:"
	bookListKeyPrefix  = "books:list:"
	cacheTTL           = 15 * time.Minute
)

const bookColumns = "id, title, isbn, author_id, page_count, cover_url, created_at, updated_at"

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.AuthorID,
		&b.PageCount,
		&b.CoverURL,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts the book inside a transaction so a failed insert leaves
// no partial state behind, which the bulk import relies on per row.
func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	created, err := database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Book, error) {
		query := fmt.Sprintf(`
            INSERT INTO books (title, isbn, author_id, page_count, cover_url)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING %s
        `, bookColumns)

		return scanBook(tx.QueryRow(ctx, query, b.Title, b.ISBN, b.AuthorID, b.PageCount, b.CoverURL))
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return nil, model.ErrISBNAlreadyExists
			case "23503":
				return nil, model.ErrAuthorNotFound
			}
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	r.invalidateListCache(ctx)
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	cacheKey := bookCacheKeyPrefix + id.String()

	var cached model.Book
	hit, err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil && hit {
		return &cached, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM books WHERE id = $1`, bookColumns)
	b, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	r.cache.Set(ctx, cacheKey, b, cacheTTL)
	return b, nil
}

func (r *postgresRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books WHERE isbn = $1`, bookColumns)
	b, err := scanBook(r.pool.QueryRow(ctx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) GetAll(ctx context.Context, filter model.BookFilter) ([]model.Book, int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s FROM books WHERE 1=1`, bookColumns))

	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND title LIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.AuthorID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND author_id = $%d", argPos))
		args = append(args, *filter.AuthorID)
		argPos++
	}

	countQuery := strings.Replace(queryBuilder.String(),
		fmt.Sprintf("SELECT %s", bookColumns),
		"SELECT COUNT(*)", 1)

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	queryBuilder.WriteString(" ORDER BY title")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books, err := collectBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	query := fmt.Sprintf(`
        UPDATE books
        SET title = $2, author_id = $3, page_count = $4, cover_url = $5, updated_at = NOW()
        WHERE id = $1
        RETURNING %s
    `, bookColumns)

	updated, err := scanBook(r.pool.QueryRow(ctx, query, b.ID, b.Title, b.AuthorID, b.PageCount, b.CoverURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	r.invalidateBookCache(ctx, b.ID)
	return updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidateBookCache(ctx, id)
	return nil
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]model.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM books ORDER BY title`, bookColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *postgresRepository) ListMissingCovers(ctx context.Context, limit int) ([]model.Book, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM books
        WHERE cover_url IS NULL
        ORDER BY created_at
        LIMIT $1
    `, bookColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list books without covers: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows)
}

func (r *postgresRepository) UpdateCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE books SET cover_url = $2, updated_at = NOW() WHERE id = $1`, id, coverURL)
	if err != nil {
		return fmt.Errorf("failed to update cover url: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}

	r.invalidateBookCache(ctx, id)
	return nil
}

func (r *postgresRepository) invalidateBookCache(ctx context.Context, id uuid.UUID) {
	r.cache.Delete(ctx, bookCacheKeyPrefix+id.String())
	r.invalidateListCache(ctx)
}

func (r *postgresRepository) invalidateListCache(ctx context.Context) {
	r.cache.DeletePattern(ctx, bookListKeyPrefix+"*")
}

func collectBooks(rows pgx.Rows) ([]model.Book, error) {
	books := []model.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}
