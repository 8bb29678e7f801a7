package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopaudit/catalog-validator/config"
	"github.com/shopaudit/catalog-validator/internal/storage"
	"github.com/shopaudit/catalog-validator/internal/validate"
)

func testConfig() *config.Config {
	return &config.Config{
		Validation: config.ValidationConfig{
			Workers:     2,
			ImageColumn: "Image Src",
			HTMLColumns: []string{"Body HTML"},
		},
	}
}

func archiveRouter(t *testing.T, archive storage.Archive) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewValidator(testConfig(), zerolog.Nop(), archive)
	router := gin.New()
	router.GET("/archive", h.ListArchive)
	router.POST("/revalidate", h.Revalidate)
	return router
}

func archivedCSV(t *testing.T, archive storage.Archive, name string, content []byte) string {
	t.Helper()
	key := storage.BuildUploadKey(name, storage.Checksum(content), time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, archive.Put(context.Background(), key, content, &storage.Metadata{OriginalName: name}))
	return key
}

func TestRevalidateFromArchive(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	// Trimmed export: only the required columns, one bad cost cell.
	content := []byte("Variant SKU,Title,Variant Position,Variant Price,Variant Cost\n" +
		"SKU-1,Widget,1,100,50\n" +
		"SKU-2,Widget 2,2,100,-5\n")
	key := archivedCSV(t, archive, "catalog.csv", content)

	router := archiveRouter(t, archive)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/revalidate?key="+url.QueryEscape(key), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ValidateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "catalog.csv", resp.Filename)
	assert.Equal(t, 2, resp.RowsProcessed)
	assert.Empty(t, resp.ArchiveKey, "re-runs are not archived again")

	// The negative cost is flagged; the absent optional price columns
	// must not be.
	assert.Equal(t, 2, resp.Summary[validate.CategoryPrice])
	assert.Equal(t, 2, resp.IssueCount)
	for _, issue := range resp.Issues {
		assert.Equal(t, "SKU-2", issue.SKU)
	}
}

func TestRevalidateUnknownKey(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	router := archiveRouter(t, archive)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/revalidate?key=uploads/2026-05-01/missing.csv", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRevalidateMissingKeyParameter(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)

	router := archiveRouter(t, archive)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/revalidate", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListArchiveKeys(t *testing.T) {
	archive, err := storage.NewLocalArchive(t.TempDir())
	require.NoError(t, err)
	key := archivedCSV(t, archive, "catalog.csv",
		[]byte("Variant SKU,Title,Variant Position,Variant Price,Variant Cost\nSKU-1,Widget,1,100,50\n"))

	router := archiveRouter(t, archive)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/archive", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Keys []string `json:"keys"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{key}, resp.Keys)
}

func TestArchiveEndpointsWithoutArchive(t *testing.T) {
	router := archiveRouter(t, nil)

	for _, tc := range []struct {
		method string
		target string
	}{
		{http.MethodGet, "/archive"},
		{http.MethodPost, "/revalidate?key=uploads/x.csv"},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.target, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, tc.target)
	}
}
