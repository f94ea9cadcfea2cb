package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailybakes-api/pkg/logger"
)

// HTTPObserver recibe la duración de cada petición (Prometheus en producción).
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
}

// RequestLogger registra método, ruta, status, latencia y usuario de cada petición.
// Si obs no es nil también alimenta las métricas HTTP.
func RequestLogger(log *logger.Logger, obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// el ErrorHandler aún no escribió la respuesta
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		latency := time.Since(start)
		status := c.Response().StatusCode()
		route := c.Route().Path

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if err, ok := c.Locals(LocalError).(error); ok {
				ev = ev.Err(err)
			}
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Str("user_id", GetUserID(c)).
			Msg("petición http")

		if obs != nil {
			obs.ObserveHTTP(c.Method(), route, status, latency)
		}
		return nil
	}
}
