package job

import (
	"context"
	"fmt"
	"path"
	"strings"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/infrastructure/cover"
	"library-backend/internal/infrastructure/storage"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const backfillBatchSize = 50

// CoverBackfillHandler periodically fills in missing cover images. For
// each book without a cover it looks the image up, mirrors the bytes
// into object storage when configured, and stores the resulting URL.
type CoverBackfillHandler struct {
	repo    repository.RepositoryInterface
	covers  *cover.Client
	storage *storage.MinIOStorage
}

// NewCoverBackfillHandler creates the handler. storage may be nil, in
// which case the upstream cover URL is stored directly.
func NewCoverBackfillHandler(
	repo repository.RepositoryInterface,
	covers *cover.Client,
	storage *storage.MinIOStorage,
) *CoverBackfillHandler {
	return &CoverBackfillHandler{
		repo:    repo,
		covers:  covers,
		storage: storage,
	}
}

func (h *CoverBackfillHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	books, err := h.repo.ListMissingCovers(ctx, backfillBatchSize)
	if err != nil {
		return fmt.Errorf("list books without covers: %w", err)
	}

	log.Info().Int("count", len(books)).Msg("Cover backfill started")

	updated := 0
	for _, book := range books {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.backfillOne(ctx, book) {
			updated++
		}
	}

	log.Info().
		Int("scanned", len(books)).
		Int("updated", updated).
		Msg("Cover backfill finished")
	return nil
}

func (h *CoverBackfillHandler) backfillOne(ctx context.Context, book model.Book) bool {
	result := h.covers.Fetch(ctx, book.ISBN)
	if result.Status != cover.StatusFound {
		return false
	}

	coverURL := result.URL
	if h.storage != nil {
		if mirrored, err := h.mirrorCover(ctx, book.ISBN, result.URL); err == nil {
			coverURL = mirrored
		} else {
			log.Warn().Err(err).Str("isbn", book.ISBN).Msg("Failed to mirror cover, storing upstream URL")
		}
	}

	if err := h.repo.UpdateCoverURL(ctx, book.ID, coverURL); err != nil {
		log.Error().Err(err).Str("isbn", book.ISBN).Msg("Failed to store cover url")
		return false
	}
	return true
}

func (h *CoverBackfillHandler) mirrorCover(ctx context.Context, isbn, coverURL string) (string, error) {
	data, contentType, err := h.covers.Download(ctx, coverURL)
	if err != nil {
		return "", err
	}

	ext := path.Ext(coverURL)
	if ext == "" {
		if parts := strings.Split(contentType, "/"); len(parts) == 2 {
			ext = "." + parts[1]
		} else {
			ext = ".jpg"
		}
	}

	key := fmt.Sprintf("covers/%s%s", isbn, ext)
	return h.storage.Upload(ctx, key, data, contentType)
}
