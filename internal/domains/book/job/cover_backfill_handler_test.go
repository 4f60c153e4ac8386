package job

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/infrastructure/cover"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookRepo struct {
	mock.Mock
}

func (m *mockBookRepo) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *mockBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *mockBookRepo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	args := m.Called(ctx, isbn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *mockBookRepo) GetAll(ctx context.Context, filter model.BookFilter) ([]model.Book, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Book), args.Get(1).(int64), args.Error(2)
}

func (m *mockBookRepo) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *mockBookRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockBookRepo) ListAll(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *mockBookRepo) ListMissingCovers(ctx context.Context, limit int) ([]model.Book, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *mockBookRepo) UpdateCoverURL(ctx context.Context, id uuid.UUID, coverURL string) error {
	args := m.Called(ctx, id, coverURL)
	return args.Error(0)
}

func TestCoverBackfillStoresUpstreamURL(t *testing.T) {
	bookID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"ISBN:9780802130303":{"cover":{"medium":"%s/covers/m.jpg"}}}`, "http://covers.test")
	}))
	defer server.Close()

	covers := cover.NewClient(server.URL, "test-agent/1.0", 100, 5*time.Second)

	repo := new(mockBookRepo)
	repo.On("ListMissingCovers", mock.Anything, backfillBatchSize).Return([]model.Book{
		{ID: bookID, ISBN: "9780802130303"},
	}, nil)
	repo.On("UpdateCoverURL", mock.Anything, bookID, "http://covers.test/covers/m.jpg").Return(nil)

	h := NewCoverBackfillHandler(repo, covers, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask("book:cover_backfill", nil))
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestCoverBackfillSkipsBooksWithoutCover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	covers := cover.NewClient(server.URL, "test-agent/1.0", 100, 5*time.Second)

	repo := new(mockBookRepo)
	repo.On("ListMissingCovers", mock.Anything, backfillBatchSize).Return([]model.Book{
		{ID: uuid.New(), ISBN: "9780000000000"},
	}, nil)

	h := NewCoverBackfillHandler(repo, covers, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask("book:cover_backfill", nil))
	require.NoError(t, err)

	repo.AssertNotCalled(t, "UpdateCoverURL", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoverBackfillListError(t *testing.T) {
	repo := new(mockBookRepo)
	repo.On("ListMissingCovers", mock.Anything, backfillBatchSize).Return(nil, assert.AnError)

	h := NewCoverBackfillHandler(repo, nil, nil)
	err := h.ProcessTask(context.Background(), asynq.NewTask("book:cover_backfill", nil))
	assert.Error(t, err)
}
