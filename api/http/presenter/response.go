package presenter

import "github.com/gofiber/fiber/v2"

type ErrorResponse struct {
	Message string `json:"message"`
}

// Page wraps one page of a listing together with the paging it was read with.
type Page[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func JSON(c *fiber.Ctx, status int, v any) error {
	return c.Status(status).JSON(v)
}

// List renders items as a Page; a nil slice is sent as an empty array.
func List[T any](c *fiber.Ctx, items []T, limit, offset int) error {
	if items == nil {
		items = []T{}
	}
	return JSON(c, fiber.StatusOK, Page[T]{Items: items, Limit: limit, Offset: offset})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, ErrorResponse{Message: message})
}
