package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	authormodel "library-backend/internal/domains/author/model"
	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/cover"
	"library-backend/internal/infrastructure/isbn"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookCreator struct {
	mock.Mock
}

func (m *mockBookCreator) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

type mockAuthorLookup struct {
	mock.Mock
}

func (m *mockAuthorLookup) GetByID(ctx context.Context, id uuid.UUID) (*authormodel.Author, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authormodel.Author), args.Error(1)
}

func (m *mockAuthorLookup) GetByNormalizedName(ctx context.Context, name string) (*authormodel.Author, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authormodel.Author), args.Error(1)
}

type mockISBNValidator struct {
	mock.Mock
}

func (m *mockISBNValidator) Validate(ctx context.Context, code string) isbn.Result {
	args := m.Called(ctx, code)
	return args.Get(0).(isbn.Result)
}

type mockCoverFetcher struct {
	mock.Mock
}

func (m *mockCoverFetcher) Fetch(ctx context.Context, code string) cover.Result {
	args := m.Called(ctx, code)
	return args.Get(0).(cover.Result)
}

var borges = &authormodel.Author{
	ID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
	Name: "JORGE LUIS BORGES",
}

const csvHeader = "title,isbn,authorId,authorName,pageCount"

func newImportFixture(workers int) (*BulkImportService, *mockBookCreator, *mockAuthorLookup, *mockISBNValidator, *mockCoverFetcher) {
	books := new(mockBookCreator)
	authors := new(mockAuthorLookup)
	validator := new(mockISBNValidator)
	covers := new(mockCoverFetcher)
	return NewBulkImportService(books, authors, validator, covers, workers), books, authors, validator, covers
}

func TestImportBooksHappyPath(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, "JORGE LUIS BORGES").Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, "9780802130303").Return(cover.Result{Status: cover.StatusFound, URL: "http://covers/m.jpg"})
	books.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.Title == "FICCIONES" &&
			b.ISBN == "9780802130303" &&
			b.AuthorID == borges.ID &&
			b.PageCount == 174 &&
			b.CoverURL != nil && *b.CoverURL == "http://covers/m.jpg"
	})).Return(&model.Book{ID: uuid.New(), Title: "FICCIONES"}, nil)

	input := csvHeader + "\nFicciones,9780802130303,,Jorge Luis Borges,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	require.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Results[0].Row)
	assert.Equal(t, model.RowStatusSuccess, result.Results[0].Status)
	assert.Empty(t, result.Results[0].Errors)
	require.NotNil(t, result.Results[0].Book)
	assert.Equal(t, "FICCIONES", result.Results[0].Book.Title)
}

func TestImportBooksResultsOrderedByRow(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(4)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, mock.Anything).Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, mock.Anything).Return(cover.Result{Status: cover.StatusNotFound})
	books.On("Create", mock.Anything, mock.Anything).Return(&model.Book{ID: uuid.New()}, nil)

	var sb strings.Builder
	sb.WriteString(csvHeader + "\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Book Number %d,97808021303%02d,,Jorge Luis Borges,100\n", i, i)
	}

	result, err := svc.ImportBooks(ctx, strings.NewReader(sb.String()))
	require.NoError(t, err)

	require.Equal(t, 20, result.Total)
	require.Len(t, result.Results, 20)
	for i, r := range result.Results {
		assert.Equal(t, i+1, r.Row)
		assert.Equal(t, model.RowStatusSuccess, r.Status)
	}
}

func TestImportBooksShortISBNFails(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, "12345").Return(isbn.ResultInvalid)

	input := csvHeader + "\nFicciones,12345,,Jorge Luis Borges,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Errors, "invalid ISBN")
	covers.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportBooksUnknownAuthorFails(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, "NOBODY").Return(nil, authormodel.ErrAuthorNotFound)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)

	input := csvHeader + "\nFicciones,9780802130303,,Nobody,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Errors, "author not found")
	covers.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportBooksMissingAuthorReference(t *testing.T) {
	svc, _, _, validator, _ := newImportFixture(1)
	ctx := context.Background()

	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)

	input := csvHeader + "\nFicciones,9780802130303,,,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Errors, "author id or name required")
	assert.Contains(t, result.Results[0].Errors, "author not found")
}

func TestImportBooksDuplicateISBNDoesNotAbortBatch(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, mock.Anything).Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, mock.Anything).Return(cover.Result{Status: cover.StatusNotFound})
	books.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.ISBN == "9780802130303"
	})).Return(nil, model.ErrISBNAlreadyExists)
	books.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.ISBN == "9780805209990"
	})).Return(&model.Book{ID: uuid.New()}, nil)

	input := csvHeader + "\n" +
		"Ficciones,9780802130303,,Jorge Luis Borges,174\n" +
		"The Aleph,9780805209990,,Jorge Luis Borges,208\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Equal(t, []string{"ISBN already exists"}, result.Results[0].Errors)
	assert.Equal(t, model.RowStatusSuccess, result.Results[1].Status)
}

func TestImportBooksValidatorOutageFailsEveryRow(t *testing.T) {
	svc, books, authors, validator, _ := newImportFixture(2)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, mock.Anything).Return(isbn.ResultUnreachable)

	input := csvHeader + "\n" +
		"Ficciones,9780802130303,,Jorge Luis Borges,174\n" +
		"The Aleph,9780805209990,,Jorge Luis Borges,208\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 2)
	for _, r := range result.Results {
		assert.Equal(t, model.RowStatusFailed, r.Status)
		assert.Contains(t, r.Errors, "invalid ISBN")
	}
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportBooksBadPageCount(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)

	input := csvHeader + "\nFicciones,9780802130303,,Jorge Luis Borges,abc\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Errors, "invalid page count")
	covers.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportBooksZeroPageCount(t *testing.T) {
	svc, _, authors, validator, _ := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)

	input := csvHeader + "\nFicciones,9780802130303,,Jorge Luis Borges,0\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Contains(t, result.Results[0].Errors, "invalid page count")
}

func TestImportBooksCoverUnreachableFailsRow(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, "9780802130303").Return(cover.Result{Status: cover.StatusUnreachable})

	input := csvHeader + "\nFicciones,9780802130303,,Jorge Luis Borges,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, model.RowStatusFailed, result.Results[0].Status)
	assert.Equal(t, []string{"cover download failed"}, result.Results[0].Errors)
	books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportBooksMissingCoverIsNotAnError(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByNormalizedName", mock.Anything, mock.Anything).Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, "9780802130303").Return(cover.Result{Status: cover.StatusNotFound})
	books.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.CoverURL == nil
	})).Return(&model.Book{ID: uuid.New()}, nil)

	input := csvHeader + "\nFicciones,9780802130303,,Jorge Luis Borges,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, model.RowStatusSuccess, result.Results[0].Status)
}

func TestImportBooksResolvesAuthorByID(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	authors.On("GetByID", mock.Anything, borges.ID).Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, "9780802130303").Return(cover.Result{Status: cover.StatusNotFound})
	books.On("Create", mock.Anything, mock.Anything).Return(&model.Book{ID: uuid.New()}, nil)

	input := csvHeader + "\nFicciones,9780802130303," + borges.ID.String() + ",,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, model.RowStatusSuccess, result.Results[0].Status)
	authors.AssertNotCalled(t, "GetByNormalizedName", mock.Anything, mock.Anything)
}

func TestImportBooksAuthorIDFallsBackToName(t *testing.T) {
	svc, books, authors, validator, covers := newImportFixture(1)
	ctx := context.Background()

	unknown := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	authors.On("GetByID", mock.Anything, unknown).Return(nil, authormodel.ErrAuthorNotFound)
	authors.On("GetByNormalizedName", mock.Anything, "JORGE LUIS BORGES").Return(borges, nil)
	validator.On("Validate", mock.Anything, "9780802130303").Return(isbn.ResultValid)
	covers.On("Fetch", mock.Anything, "9780802130303").Return(cover.Result{Status: cover.StatusNotFound})
	books.On("Create", mock.Anything, mock.Anything).Return(&model.Book{ID: uuid.New()}, nil)

	input := csvHeader + "\nFicciones,9780802130303," + unknown.String() + ",Jorge Luis Borges,174\n"
	result, err := svc.ImportBooks(ctx, strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, model.RowStatusSuccess, result.Results[0].Status)
}

func TestImportBooksUndecodableInput(t *testing.T) {
	svc, _, _, _, _ := newImportFixture(1)

	_, err := svc.ImportBooks(context.Background(), strings.NewReader(""))
	assert.Error(t, err)
}
