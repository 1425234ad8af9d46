package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bakery_api/internal/utils"
)

const maxPageLimit = 100

// pageParams reads page and limit, defaulting to 1 and utils.DefaultPageLimit.
func pageParams(c *gin.Context) (page, limit int) {
	page, limit = 1, utils.DefaultPageLimit
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, maxPageLimit)
		}
	}
	return page, limit
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(c *gin.Context, key string) *bool {
	v := strings.ToLower(strings.TrimSpace(c.Query(key)))
	if v == "" {
		return nil
	}
	b := v == "true" || v == "1" || v == "yes"
	return &b
}
