package api

import (
	"github.com/gofiber/fiber/v3"

	"livescan/internal/models"
)

// jsonSuccess wraps data in the {"status":"ok","data":...} envelope.
func jsonSuccess(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"data":   data,
	})
}

// jsonPage wraps one page of rows. A nil slice is sent as [] so clients can
// always iterate data.data.
func jsonPage[T any](c fiber.Ctx, rows []T, total int64, limit, offset int) error {
	if rows == nil {
		rows = []T{}
	}
	return jsonSuccess(c, models.Page[T]{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Data:   rows,
	})
}

// jsonError writes the {"status":"error","error":...} envelope with status.
// message must be safe to show to end users.
func jsonError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "error",
		"error":  message,
	})
}
