package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/sankalpiq/voice-agent/internal/handlers"
	"github.com/sankalpiq/voice-agent/internal/middleware"
	"github.com/sankalpiq/voice-agent/internal/services"
)

// Dependencies are the handlers and settings the routes are built from
type Dependencies struct {
	Voice  *handlers.VoiceHandler
	Calls  *handlers.CallHandler
	Health *handlers.HealthHandler

	// ValidateWebhooks enables Twilio signature checks on /voice routes
	ValidateWebhooks bool
	AuthToken        string
	BaseURL          func() string
}

// SetupRoutes configures all routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	app.Get("/", deps.Health.Root)
	app.Get("/healthcheck", deps.Health.Check)
	app.Get("/health", deps.Health.Check)
	app.Get("/current-webhook", deps.Health.CurrentWebhook)
	app.Post("/refresh-webhook", deps.Health.RefreshWebhook)

	// ========== OUTBOUND CALL TRIGGERS ==========
	app.Get("/make-faq-call", deps.Calls.MakeCall(services.FlowFAQ))
	app.Get("/make-info-call", deps.Calls.MakeCall(services.FlowInfo))

	// ========== VOICE WEBHOOKS ==========
	var webhookAuth []fiber.Handler
	if deps.ValidateWebhooks {
		webhookAuth = append(webhookAuth, middleware.ValidateTwilioSignature(deps.AuthToken, deps.BaseURL))
	} else {
		log.Println("⚠️  Voice webhook signature validation DISABLED")
	}

	withAuth := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, webhookAuth...), h)
	}

	voice := app.Group("/voice")
	voice.Post("/:flow/:state", withAuth(deps.Voice.HandleTurn)...)
	voice.Get("/:flow/:state", withAuth(deps.Voice.HandleTurn)...)

	// entry URLs used by numbers configured before the /voice layout
	app.Post("/voice-faq", withAuth(deps.Voice.Entry(services.FlowFAQ))...)
	app.Post("/voice-info", withAuth(deps.Voice.Entry(services.FlowInfo))...)
}
