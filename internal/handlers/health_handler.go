package handlers

import (
	"pharmacy/internal/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// BrokerStatus reports whether the service currently holds a broker connection.
type BrokerStatus interface {
	Connected() bool
}

// HealthHandler reports database and broker state. Only a failing database makes the
// service unhealthy; the broker is reconnected on demand.
type HealthHandler struct {
	db     *gorm.DB
	broker BrokerStatus
}

func NewHealthHandler(db *gorm.DB, broker BrokerStatus) *HealthHandler {
	return &HealthHandler{db: db, broker: broker}
}

func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	status := fiber.StatusOK
	body := fiber.Map{"status": "ok", "database": "up", "broker": "disconnected"}

	if err := database.Ping(h.db); err != nil {
		status = fiber.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["database"] = "down"
	}
	if h.broker != nil && h.broker.Connected() {
		body["broker"] = "connected"
	}
	return c.Status(status).JSON(body)
}
