package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangang/framewise/backend/pkg/response"
)

// idParam reads a positive numeric path parameter. A malformed value is a
// validation error on that parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, response.NewFieldError(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return uint(id), nil
}
