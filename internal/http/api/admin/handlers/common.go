// Package handlers implements the admin surface endpoints.
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Listing pagination defaults.
const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// pagination reads limit/offset query parameters with bounded defaults.
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// pathID parses the numeric :id path parameter.
func pathID(c *gin.Context) (uint64, bool) {
	id, errParse := strconv.ParseUint(c.Param("id"), 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}
