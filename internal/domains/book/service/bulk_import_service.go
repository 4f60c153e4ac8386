package service

import (
	"context"
	"io"
	"strconv"

	authormodel "library-backend/internal/domains/author/model"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/cover"
	"library-backend/internal/infrastructure/isbn"
	"library-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ISBNValidator reports whether an ISBN-13 is registered. Unreachable is
// treated the same as invalid so an outage never lets unverified ISBNs in.
type ISBNValidator interface {
	Validate(ctx context.Context, code string) isbn.Result
}

// CoverFetcher looks up a cover image URL for an ISBN.
type CoverFetcher interface {
	Fetch(ctx context.Context, isbn string) cover.Result
}

// AuthorLookup resolves author references during import.
type AuthorLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*authormodel.Author, error)
	GetByNormalizedName(ctx context.Context, name string) (*authormodel.Author, error)
}

// BookCreator persists a single book.
type BookCreator interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
}

// BulkImportService ingests uploaded CSV catalogs. Rows are processed
// concurrently up to the configured worker count; each row succeeds or
// fails on its own and the batch never aborts on a bad row.
type BulkImportService struct {
	books     BookCreator
	authors   AuthorLookup
	validator ISBNValidator
	covers    CoverFetcher
	workers   int
}

func NewBulkImportService(
	books BookCreator,
	authors AuthorLookup,
	validator ISBNValidator,
	covers CoverFetcher,
	workers int,
) *BulkImportService {
	if workers < 1 {
		workers = 1
	}
	return &BulkImportService{
		books:     books,
		authors:   authors,
		validator: validator,
		covers:    covers,
		workers:   workers,
	}
}

// ImportBooks decodes src and processes every row. A decode failure
// aborts the whole request since no rows can be recovered from a
// malformed file. The report lists outcomes in source row order.
func (s *BulkImportService) ImportBooks(ctx context.Context, src io.Reader) (*model.BulkImportResult, error) {
	rows, err := decodeRows(src)
	if err != nil {
		return nil, err
	}

	results := make([]model.RowResult, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(s.workers)
	for i := range rows {
		g.Go(func() error {
			results[i] = s.processRow(ctx, rows[i])
			return nil
		})
	}
	g.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Status == model.RowStatusSuccess {
			succeeded++
		}
	}
	log.Info().
		Int("total", len(results)).
		Int("succeeded", succeeded).
		Int("failed", len(results)-succeeded).
		Msg("Bulk import finished")

	return &model.BulkImportResult{
		Total:   len(results),
		Results: results,
	}, nil
}

// processRow runs the full per-row pipeline: structural validation,
// author resolution and ISBN validation always run so a single pass
// surfaces every problem; the cover lookup is skipped as soon as any
// error exists, and persistence only happens for clean rows.
func (s *BulkImportService) processRow(ctx context.Context, row model.ImportRow) model.RowResult {
	var rowErrors []string

	normalizedTitle := utils.NormalizeText(row.Title)
	if len([]rune(normalizedTitle)) < 2 {
		rowErrors = append(rowErrors, "invalid title")
	}
	if len(row.ISBN) != 13 {
		rowErrors = append(rowErrors, "invalid ISBN")
	}
	if row.AuthorID == "" && row.AuthorName == "" {
		rowErrors = append(rowErrors, "author id or name required")
	}
	pageCount, err := strconv.Atoi(row.PageCount)
	if err != nil || pageCount < 1 {
		rowErrors = append(rowErrors, "invalid page count")
	}

	author := s.resolveAuthor(ctx, row)
	if author == nil {
		rowErrors = append(rowErrors, "author not found")
	}

	if s.validator.Validate(ctx, row.ISBN) != isbn.ResultValid {
		rowErrors = append(rowErrors, "invalid ISBN")
	}

	var coverURL *string
	if len(rowErrors) == 0 {
		switch result := s.covers.Fetch(ctx, row.ISBN); result.Status {
		case cover.StatusFound:
			coverURL = &result.URL
		case cover.StatusUnreachable:
			rowErrors = append(rowErrors, "cover download failed")
		}
	}

	if len(rowErrors) > 0 {
		return model.RowResult{
			Row:    row.Row,
			Status: model.RowStatusFailed,
			Errors: rowErrors,
		}
	}

	book, err := s.books.Create(ctx, &model.Book{
		Title:     normalizedTitle,
		ISBN:      row.ISBN,
		AuthorID:  author.ID,
		PageCount: pageCount,
		CoverURL:  coverURL,
	})
	if err != nil {
		return model.RowResult{
			Row:    row.Row,
			Status: model.RowStatusFailed,
			Errors: []string{err.Error()},
		}
	}

	return model.RowResult{
		Row:    row.Row,
		Status: model.RowStatusSuccess,
		Book:   book,
	}
}

// resolveAuthor tries the id reference first, then falls back to an
// exact normalized-name match. It never creates authors.
func (s *BulkImportService) resolveAuthor(ctx context.Context, row model.ImportRow) *authormodel.Author {
	if len(row.AuthorID) == 36 {
		if id, err := uuid.Parse(row.AuthorID); err == nil {
			if author, err := s.authors.GetByID(ctx, id); err == nil {
				return author
			}
		}
	}

	if row.AuthorName != "" {
		name := utils.NormalizeText(row.AuthorName)
		if author, err := s.authors.GetByNormalizedName(ctx, name); err == nil {
			return author
		}
	}

	return nil
}
