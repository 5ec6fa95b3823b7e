package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/internal/config"
	"github.com/huangang/framewise/backend/internal/utils"
	"github.com/huangang/framewise/backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestParseRouteInfo(t *testing.T) {
	tests := []struct {
		path, method   string
		module, action string
	}{
		{"/api/projects", "POST", "Projects", "Create"},
		{"/api/tasks/:id", "PUT", "Tasks", "Update"},
		{"/api/media/:id", "DELETE", "Media", "Delete"},
		{"/api/team/invite", "POST", "Team", "Invite"},
		{"/api/team/:id/accept", "POST", "Team", "Accept"},
		{"/api/media/upload", "POST", "Media", "Upload"},
		{"/api/ai/analyze-script", "POST", "Ai", "Create"},
		{"", "GET", "unknown", "GET"},
	}

	for _, tt := range tests {
		module, action := parseRouteInfo(tt.path, tt.method)
		assert.Equal(t, tt.module, module, tt.path)
		assert.Equal(t, tt.action, action, tt.path)
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	masked := maskSensitiveFields(`{"email":"a@b.co","token": "abc123"}`)
	assert.Contains(t, masked, `"token": "***"`)
	assert.Contains(t, masked, `"a@b.co"`)

	assert.Equal(t, `{"title":"Promo"}`, maskSensitiveFields(`{"title":"Promo"}`))
}

func TestAuditLog_WritesEntryAndPreservesBody(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(nil)

	router := gin.New()
	router.Use(RequestID(), AuditLog())
	var seen string
	router.POST("/api/projects", func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		_ = c.ShouldBindJSON(&body)
		seen = body.Title
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/projects", strings.NewReader(`{"title":"Launch Teaser"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, "Launch Teaser", seen)

	line := buf.String()
	assert.Equal(t, "audit", gjson.Get(line, "component").String())
	assert.Equal(t, "Projects", gjson.Get(line, "module").String())
	assert.Equal(t, int64(201), gjson.Get(line, "status").Int())
	assert.NotEmpty(t, gjson.Get(line, "request_id").String())
}

func TestAuditLog_RecordsTokenIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(nil)

	router := gin.New()
	router.Use(Actor(config.AuthConfig{DefaultUserID: 1}), AuditLog())
	router.DELETE("/api/tasks/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	token, err := utils.GenerateToken(9, "kim", "editor", 1)
	assert.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/tasks/3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	line := buf.String()
	assert.Equal(t, "Delete", gjson.Get(line, "action").String())
	assert.Equal(t, int64(9), gjson.Get(line, "user_id").Int())
	assert.Equal(t, "kim", gjson.Get(line, "username").String())
	assert.Equal(t, "editor", gjson.Get(line, "role").String())
}

func TestAuditLog_SkipsReads(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(nil)

	router := gin.New()
	router.Use(AuditLog())
	router.GET("/api/projects", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/projects", nil)
	router.ServeHTTP(w, req)

	assert.Empty(t, buf.String())
}
