package middleware

import (
	"runtime/debug"

	"deep-research/config"
	"deep-research/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// ConnectionLimiter limits the number of concurrent requests
type ConnectionLimiter struct {
	limit    int
	waitlist chan struct{}
}

func NewConnectionLimiter(limit int) *ConnectionLimiter {
	if limit <= 0 {
		limit = 1
	}
	return &ConnectionLimiter{
		limit:    limit,
		waitlist: make(chan struct{}, limit),
	}
}

func (cl *ConnectionLimiter) Acquire() bool {
	select {
	case cl.waitlist <- struct{}{}:
		return true
	default:
		return false
	}
}

func (cl *ConnectionLimiter) Release() {
	select {
	case <-cl.waitlist:
	default:
	}
}

func (cl *ConnectionLimiter) Limit() int { return cl.limit }

// Limit rejects requests with 503 once the limiter is full.
func Limit(limiter *ConnectionLimiter) fiber.Handler {
	return func(c fiber.Ctx) error {
		if !limiter.Acquire() {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Server is at maximum capacity")
		}
		defer limiter.Release()
		return c.Next()
	}
}

// RequestID makes sure every request carries an X-Request-ID and echoes it back.
func RequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
			c.Request().Header.Set(HeaderRequestID, id)
		}
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// Recover turns a panic into a 500 response and logs the stack.
func Recover() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule(config.ModuleServer).WithFields(map[string]interface{}{
					"panic":       r,
					"method":      c.Method(),
					"path":        c.Path(),
					"ip":          c.IP(),
					"user_agent":  c.Get("User-Agent"),
					"tracking_id": c.Get(HeaderRequestID),
					"stack":       string(debug.Stack()),
				}).Error("panic recovered")

				err = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Internal Server Error",
					"message": "An unexpected error occurred",
				})
			}
		}()
		return c.Next()
	}
}
