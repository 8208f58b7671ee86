package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sankalpiq/voice-agent/internal/services"
)

// CallPlacer originates outbound calls
type CallPlacer interface {
	PlaceCall(flow services.Flow) (string, error)
}

// CallHandler triggers outbound calls
type CallHandler struct {
	placer CallPlacer
}

// NewCallHandler creates a call handler; placer may be nil when Twilio is not configured
func NewCallHandler(placer CallPlacer) *CallHandler {
	return &CallHandler{placer: placer}
}

// MakeCall returns a handler that places a call into flow
func (h *CallHandler) MakeCall(flow services.Flow) fiber.Handler {
	label := strings.ToUpper(string(flow[:1])) + string(flow[1:])

	return func(c *fiber.Ctx) error {
		if h.placer == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"message": "Error making " + string(flow) + " call",
				"error":   "Twilio service not configured",
			})
		}

		sid, err := h.placer.PlaceCall(flow)
		if err != nil {
			log.Printf("❌ %s call failed: %v", label, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"message": "Error making " + string(flow) + " call",
				"error":   err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"message": label + " Call initiated successfully!",
			"sid":     sid,
		})
	}
}
