package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"library-backend/internal/domains/author/model"
	"library-backend/pkg/cache"

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
	authorCacheKeyPrefix = "author:"
	authorNameKeyPrefix  = "author:name:"
	authorListKeyPrefix  = "authors:list:"
	cacheTTL             = 15 * time.Minute
)

func (r *postgresRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
        INSERT INTO authors (name, birth_date)
        VALUES ($1, $2)
        RETURNING id, name, birth_date, created_at, updated_at
    `

	var created model.Author
	err := r.pool.QueryRow(ctx, query, a.Name, a.BirthDate).Scan(
		&created.ID,
		&created.Name,
		&created.BirthDate,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	r.invalidateListCache(ctx)
	return &created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	cacheKey := authorCacheKeyPrefix + id.String()

	var a model.Author
	cached, err := r.cache.Get(ctx, cacheKey, &a)
	if err == nil && cached {
		return &a, nil
	}

	query := `
        SELECT id, name, birth_date, created_at, updated_at
        FROM authors
        WHERE id = $1
    `

	err = r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.Name,
		&a.BirthDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}

	r.cache.Set(ctx, cacheKey, a, cacheTTL)
	return &a, nil
}

func (r *postgresRepository) GetByNormalizedName(ctx context.Context, name string) (*model.Author, error) {
	cacheKey := authorNameKeyPrefix + name

	var a model.Author
	cached, err := r.cache.Get(ctx, cacheKey, &a)
	if err == nil && cached {
		return &a, nil
	}

	// Oldest record wins when names collide, keeping resolution stable
	// across runs.
	query := `
        SELECT id, name, birth_date, created_at, updated_at
        FROM authors
        WHERE name = $1
        ORDER BY created_at, id
        LIMIT 1
    `

	err = r.pool.QueryRow(ctx, query, name).Scan(
		&a.ID,
		&a.Name,
		&a.BirthDate,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by name: %w", err)
	}

	r.cache.Set(ctx, cacheKey, a, cacheTTL)
	return &a, nil
}

func (r *postgresRepository) GetAll(ctx context.Context, filter model.AuthorFilter) ([]model.Author, int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT id, name, birth_date, created_at, updated_at
        FROM authors
        WHERE 1=1
    `)

	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND name LIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	countQuery := strings.Replace(queryBuilder.String(),
		"SELECT id, name, birth_date, created_at, updated_at",
		"SELECT COUNT(*)", 1)

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	queryBuilder.WriteString(" ORDER BY name")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argPos, argPos+1))
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := []model.Author{}
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.Name, &a.BirthDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate authors: %w", err)
	}

	return authors, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
        UPDATE authors
        SET name = $2, birth_date = $3, updated_at = NOW()
        WHERE id = $1
        RETURNING id, name, birth_date, created_at, updated_at
    `

	var updated model.Author
	err := r.pool.QueryRow(ctx, query, a.ID, a.Name, a.BirthDate).Scan(
		&updated.ID,
		&updated.Name,
		&updated.BirthDate,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	r.invalidateAuthorCache(ctx, a.ID)
	return &updated, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return model.ErrAuthorInUse
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}

	r.invalidateAuthorCache(ctx, id)
	return nil
}

func (r *postgresRepository) invalidateAuthorCache(ctx context.Context, id uuid.UUID) {
	r.cache.Delete(ctx, authorCacheKeyPrefix+id.String())
	r.cache.DeletePattern(ctx, authorNameKeyPrefix+"*")
	r.invalidateListCache(ctx)
}

func (r *postgresRepository) invalidateListCache(ctx context.Context) {
	r.cache.DeletePattern(ctx, authorListKeyPrefix+"*")
}
