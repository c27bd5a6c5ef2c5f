package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// RequestIDMiddleware присваивает запросу идентификатор. Пришедший от клиента
// X-Request-ID сохраняется.
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Get(fiber.HeaderXRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey, id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}
