package service

import (
	"context"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/cover"
	"library-backend/internal/infrastructure/isbn"
	"library-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// ServiceInterface exposes single-book catalog operations.
type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) (*model.BookListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateBookRequest) (*model.Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckISBN(ctx context.Context, code string) bool
	ExportToExcel(ctx context.Context) (*excelize.File, error)
}

type bookService struct {
	repo      repository.RepositoryInterface
	authors   AuthorLookup
	validator ISBNValidator
	covers    CoverFetcher
}

func NewBookService(
	repo repository.RepositoryInterface,
	authors AuthorLookup,
	validator ISBNValidator,
	covers CoverFetcher,
) ServiceInterface {
	return &bookService{
		repo:      repo,
		authors:   authors,
		validator: validator,
		covers:    covers,
	}
}

// Create validates the request, confirms the ISBN against the remote
// validator and persists the book. The cover lookup is best effort and
// never blocks creation.
func (s *bookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	authorID, err := uuid.Parse(req.AuthorID)
	if err != nil {
		return nil, model.ErrAuthorNotFound
	}
	if _, err := s.authors.GetByID(ctx, authorID); err != nil {
		return nil, model.ErrAuthorNotFound
	}

	if s.validator.Validate(ctx, req.ISBN) != isbn.ResultValid {
		return nil, model.ErrInvalidISBN
	}

	var coverURL *string
	if result := s.covers.Fetch(ctx, req.ISBN); result.Status == cover.StatusFound {
		coverURL = &result.URL
	}

	return s.repo.Create(ctx, &model.Book{
		Title:     utils.NormalizeText(req.Title),
		ISBN:      req.ISBN,
		AuthorID:  authorID,
		PageCount: req.PageCount,
		CoverURL:  coverURL,
	})
}

func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) List(ctx context.Context, filter model.BookFilter) (*model.BookListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	filter.Search = utils.NormalizeText(filter.Search)

	books, total, err := s.repo.GetAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &model.BookListResponse{
		Total: total,
		Page:  filter.Page,
		Pages: pages,
		Books: books,
	}, nil
}

func (s *bookService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = utils.NormalizeText(*req.Title)
	}
	if req.AuthorID != nil {
		authorID, err := uuid.Parse(*req.AuthorID)
		if err != nil {
			return nil, model.ErrAuthorNotFound
		}
		if _, err := s.authors.GetByID(ctx, authorID); err != nil {
			return nil, model.ErrAuthorNotFound
		}
		book.AuthorID = authorID
	}
	if req.PageCount != nil {
		book.PageCount = *req.PageCount
	}

	return s.repo.Update(ctx, book)
}

func (s *bookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// CheckISBN reports whether the remote validator accepts the ISBN.
// Unreachable counts as invalid.
func (s *bookService) CheckISBN(ctx context.Context, code string) bool {
	if len(code) != 13 {
		return false
	}
	return s.validator.Validate(ctx, code) == isbn.ResultValid
}

// ExportToExcel renders the whole catalog as a spreadsheet.
func (s *bookService) ExportToExcel(ctx context.Context) (*excelize.File, error) {
	books, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Books"
	f.SetSheetName("Sheet1", sheetName)

	headers := []string{"ID", "Title", "ISBN", "Author ID", "Page Count", "Cover URL", "Created At"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	if headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		f.SetCellStyle(sheetName, "A1", "G1", headerStyle)
	}

	for i, b := range books {
		rowNum := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, rowNum)
			return name
		}

		f.SetCellValue(sheetName, cell(1), b.ID.String())
		f.SetCellValue(sheetName, cell(2), b.Title)
		f.SetCellValue(sheetName, cell(3), b.ISBN)
		f.SetCellValue(sheetName, cell(4), b.AuthorID.String())
		f.SetCellValue(sheetName, cell(5), b.PageCount)
		if b.CoverURL != nil {
			f.SetCellValue(sheetName, cell(6), *b.CoverURL)
		}
		f.SetCellValue(sheetName, cell(7), b.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return f, nil
}
