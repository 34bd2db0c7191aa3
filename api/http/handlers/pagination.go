package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

var errBadPage = errors.New("limit и offset должны быть неотрицательными целыми числами")

// parsePage reads limit and offset from the query. Missing values fall back
// to defaults; limit above maxPageSize is capped.
func parsePage(c *fiber.Ctx) (limit, offset int, err error) {
	limit = defaultPageSize
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n <= 0 {
			return 0, 0, errBadPage
		}
		limit = min(n, maxPageSize)
	}
	if v := strings.TrimSpace(c.Query("offset")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 0 {
			return 0, 0, errBadPage
		}
		offset = n
	}
	return limit, offset, nil
}
