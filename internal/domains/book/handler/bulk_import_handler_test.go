package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"library-backend/internal/domains/book/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBulkImportRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewBulkImportService(nil, nil, nil, nil, 1)
	h := NewBulkImportHandler(svc)

	router := gin.New()
	router.POST("/books/bulk-import", h.ImportBooks)
	return router
}

func multipartUpload(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestImportBooksMissingFile(t *testing.T) {
	router := newBulkImportRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books/bulk-import", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportBooksRejectsNonCSV(t *testing.T) {
	router := newBulkImportRouter()

	body, contentType := multipartUpload(t, "file", "books.xlsx", "not a csv")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books/bulk-import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportBooksRejectsWrongFieldName(t *testing.T) {
	router := newBulkImportRouter()

	body, contentType := multipartUpload(t, "upload", "books.csv", "title,isbn\n")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books/bulk-import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportBooksUndecodableFile(t *testing.T) {
	router := newBulkImportRouter()

	body, contentType := multipartUpload(t, "file", "books.csv", "")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/books/bulk-import", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}
