package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/models"
	"github.com/huangang/framewise/backend/internal/services"
	"github.com/huangang/framewise/backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newDeps(t *testing.T, maxBytes int64) *services.Deps {
	t.Helper()
	dsn := fmt.Sprintf("file:h_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))
	require.NoError(t, models.SeedDefaultData(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	blobs, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return &services.Deps{DB: db, Blobs: blobs, Events: services.NewEventHub(), Upload: config.UploadConfig{MaxBytes: maxBytes}}
}

func TestIDParam(t *testing.T) {
	tests := []struct {
		value string
		want  uint
		ok    bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"99999999999", 0, false},
	}

	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "projectId", Value: tt.value}}

		got, err := idParam(c, "projectId")
		if tt.ok {
			assert.NoError(t, err, tt.value)
			assert.Equal(t, tt.want, got, tt.value)
		} else {
			assert.Error(t, err, tt.value)
			assert.Contains(t, err.Error(), "Validation", tt.value)
		}
	}
}

func TestParseOptionalID(t *testing.T) {
	id, ok := parseOptionalID("7")
	assert.True(t, ok)
	assert.Equal(t, uint(7), id)

	_, ok = parseOptionalID("")
	assert.False(t, ok)
}

func uploadRequest(t *testing.T, filename string, size int) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("projectId", "1"))
	require.NoError(t, mw.WriteField("category", "props"))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{0x25}, size))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestMediaUpload_TooLarge(t *testing.T) {
	deps := newDeps(t, 1024)
	h := NewMediaHandler(services.NewMediaService(deps))
	router := gin.New()
	router.POST("/api/media/upload", h.Upload)

	// over the file limit but inside the multipart allowance
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "call-sheet.pdf", 2048))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FileTooLarge", gjson.Get(w.Body.String(), "error").String())

	// over the request body cap
	w = httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "call-sheet.pdf", 2<<20))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "FileTooLarge", gjson.Get(w.Body.String(), "error").String())

	var count int64
	deps.DB.Model(&models.MediaAsset{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMediaUpload_NonNumericProjectID(t *testing.T) {
	deps := newDeps(t, 1024)
	h := NewMediaHandler(services.NewMediaService(deps))
	router := gin.New()
	router.POST("/api/media/upload", h.Upload)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("projectId", "abc"))
	require.NoError(t, mw.WriteField("category", "bloopers"))
	part, err := mw.CreateFormFile("file", "x.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/media/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	body := w.Body.String()
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ValidationError", gjson.Get(body, "error").String())
	assert.Equal(t, "projectId", gjson.Get(body, "errors.0.field").String())
	assert.Equal(t, "category", gjson.Get(body, "errors.1.field").String())

	var count int64
	deps.DB.Model(&models.MediaAsset{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMediaUpload_NotMultipart(t *testing.T) {
	deps := newDeps(t, 1024)
	h := NewMediaHandler(services.NewMediaService(deps))
	router := gin.New()
	router.POST("/api/media/upload", h.Upload)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/media/upload", strings.NewReader(`{"file":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", gjson.Get(w.Body.String(), "errors.0.field").String())
}

func TestServe_MissingFile(t *testing.T) {
	deps := newDeps(t, 1024)
	h := NewMediaHandler(services.NewMediaService(deps))
	router := gin.New()
	router.GET("/uploads/:filename", h.Serve)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/uploads/location-scout-1.jpg", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "File not found", gjson.Get(w.Body.String(), "message").String())
}

func TestPhaseList_UnknownProjectIsEmpty(t *testing.T) {
	deps := newDeps(t, 1024)
	h := NewPhaseHandler(services.NewPhaseService(deps))
	router := gin.New()
	router.GET("/api/phases/:projectId", h.ListByProject)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/phases/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "count").Int())
	assert.True(t, gjson.Get(w.Body.String(), "data").IsArray())
}
