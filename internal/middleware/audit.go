package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/pkg/logger"
)

const auditBodyLimit = 2000

// AuditLog writes one structured line per write request (POST/PUT/DELETE).
// Multipart bodies are never captured.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var bodySnippet string
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			bodyBytes, _ := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = string(bodyBytes)
			if len(bodySnippet) > auditBodyLimit {
				bodySnippet = bodySnippet[:auditBodyLimit] + "...[truncated]"
			}
			bodySnippet = maskSensitiveFields(bodySnippet)
		}

		c.Next()

		status := c.Writer.Status()
		module, action := parseRouteInfo(c.FullPath(), method)

		event := logger.Info()
		if status >= http.StatusBadRequest {
			event = logger.Warn()
		}
		event.
			Str("component", "audit").
			Str("module", module).
			Str("action", action).
			Uint("user_id", GetUserID(c)).
			Str("username", GetUsername(c)).
			Str("role", GetRole(c)).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Str("body", bodySnippet).
			Msg(auditOutcome(status))
	}
}

// parseRouteInfo extracts module and action from a Gin route pattern.
// e.g. "/api/tasks/:id" + "PUT" → module="Tasks", action="Update"
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")

	parts := strings.SplitN(path, "/", 2)
	module = parts[0]
	if module == "" {
		module = "unknown"
	} else {
		words := strings.Split(module, "-")
		for i, w := range words {
			if w != "" {
				words[i] = strings.ToUpper(w[:1]) + w[1:]
			}
		}
		module = strings.Join(words, " ")
	}

	switch {
	case method == http.MethodPost && strings.HasSuffix(fullPath, "/accept"):
		action = "Accept"
	case method == http.MethodPost && strings.HasSuffix(fullPath, "/invite"):
		action = "Invite"
	case method == http.MethodPost && strings.HasSuffix(fullPath, "/upload"):
		action = "Upload"
	case method == http.MethodPost:
		action = "Create"
	case method == http.MethodPut:
		action = "Update"
	case method == http.MethodDelete:
		action = "Delete"
	default:
		action = method
	}

	return module, action
}

func auditOutcome(status int) string {
	if status >= 200 && status < 300 {
		return "audit: ok"
	}
	return "audit: failed"
}

// maskSensitiveFields replaces sensitive values in JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "api_key", "apiKey", "secret", "token"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, strings.ToLower(key)) {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of the first JSON string value for key.
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+strings.ToLower(key)+"\"")
	if idx == -1 {
		return body
	}

	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}

	if valueStart >= len(body) || body[valueStart] != '"' {
		return body
	}

	endQuote := strings.Index(body[valueStart+1:], "\"")
	if endQuote == -1 {
		return body
	}
	return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
}
