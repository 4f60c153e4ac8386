package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"library-backend/internal/domains/book/service"
	"library-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type BulkImportHandler struct {
	service *service.BulkImportService
}

func NewBulkImportHandler(svc *service.BulkImportService) *BulkImportHandler {
	return &BulkImportHandler{service: svc}
}

// ImportBooks handles POST /books/bulk-import. The uploaded file must be
// a CSV sent as the multipart field "file". The response is the full
// batch report, returned only after every row has been processed.
func (h *BulkImportHandler) ImportBooks(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required (multipart/form-data)")
		return
	}

	if strings.ToLower(filepath.Ext(fileHeader.Filename)) != ".csv" {
		response.BadRequest(c, "only .csv files are accepted")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.InternalServerError(c, "failed to open uploaded file")
		return
	}
	defer file.Close()

	log.Info().
		Str("request_id", c.GetString("request_id")).
		Str("file_name", fileHeader.Filename).
		Int64("file_size", fileHeader.Size).
		Msg("Bulk import started")

	result, err := h.service.ImportBooks(c.Request.Context(), file)
	if err != nil {
		log.Error().Err(err).Msg("Bulk import failed")
		response.InternalServerError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}
