package handlers

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/sankalpiq/voice-agent/internal/services"
)

// CallEngine computes the TwiML reply for one call turn
type CallEngine interface {
	Handle(ctx context.Context, t services.Turn) string
}

// VoiceHandler answers Twilio voice webhooks
type VoiceHandler struct {
	engine CallEngine
}

// NewVoiceHandler creates a new voice handler
func NewVoiceHandler(engine CallEngine) *VoiceHandler {
	return &VoiceHandler{engine: engine}
}

// VoiceWebhookPayload is the subset of Twilio's voice callback form we use
type VoiceWebhookPayload struct {
	CallSid      string `form:"CallSid"`
	From         string `form:"From"`
	To           string `form:"To"`
	CallStatus   string `form:"CallStatus"`
	SpeechResult string `form:"SpeechResult"` // empty when nothing was heard
	Confidence   string `form:"Confidence"`
}

// HandleTurn serves /voice/:flow/:state. It always answers 200 with TwiML.
func (h *VoiceHandler) HandleTurn(c *fiber.Ctx) error {
	return h.respond(c, c.Params("flow"), c.Params("state"))
}

// Entry serves a fixed entry URL for flow, such as /voice-faq
func (h *VoiceHandler) Entry(flow services.Flow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return h.respond(c, string(flow), string(services.StateStart))
	}
}

func (h *VoiceHandler) respond(c *fiber.Ctx, flow, state string) error {
	var payload VoiceWebhookPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			log.Printf("⚠️  Unreadable voice webhook body: %v", err)
			payload = VoiceWebhookPayload{}
		}
	}

	if payload.SpeechResult != "" {
		log.Printf("🎙️ Call %s (%s/%s) heard: %s", payload.CallSid, flow, state, payload.SpeechResult)
	}

	doc := h.engine.Handle(c.UserContext(), services.Turn{
		Flow:     flow,
		State:    state,
		RawQuery: string(c.Request().URI().QueryString()),
		Speech:   payload.SpeechResult,
		CallSID:  payload.CallSid,
	})

	c.Set(fiber.HeaderContentType, "application/xml")
	return c.Status(fiber.StatusOK).SendString(doc)
}
