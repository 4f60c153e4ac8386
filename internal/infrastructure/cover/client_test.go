package cover

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, "test-agent/1.0", 100, 5*time.Second)
}

func TestFetchFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "ISBN:9780140447927", r.URL.Query().Get("bibkeys"))
		require.Equal(t, "test-agent/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, `{"ISBN:9780140447927":{"cover":{"small":"s.jpg","medium":"m.jpg","large":"l.jpg"}}}`)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Fetch(context.Background(), "9780140447927")
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, "m.jpg", result.URL)
}

func TestFetchNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Fetch(context.Background(), "9780000000000")
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Empty(t, result.URL)
}

func TestFetchNoCoverField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ISBN:9780140447927":{}}`)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Fetch(context.Background(), "9780140447927")
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestFetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	result := newTestClient(server.URL).Fetch(context.Background(), "9780140447927")
	assert.Equal(t, StatusUnreachable, result.Status)
}

func TestFetchConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	result := newTestClient(server.URL).Fetch(context.Background(), "9780140447927")
	assert.Equal(t, StatusUnreachable, result.Status)
}

func TestDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer server.Close()

	data, contentType, err := newTestClient(server.URL).Download(context.Background(), server.URL+"/covers/m.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)
	assert.Equal(t, "image/jpeg", contentType)
}

func TestDownloadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, _, err := newTestClient(server.URL).Download(context.Background(), server.URL+"/covers/m.jpg")
	assert.Error(t, err)
}
