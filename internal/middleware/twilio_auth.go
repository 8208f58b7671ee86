package middleware

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/twilio/twilio-go/client"
)

// ValidateTwilioSignature validates that the webhook request is from Twilio.
// baseURL returns the public base the provider was given; when it is empty
// the base is rebuilt from forwarding headers or the request host.
func ValidateTwilioSignature(authToken string, baseURL func() string) fiber.Handler {
	validator := client.NewRequestValidator(authToken)

	return func(c *fiber.Ctx) error {
		twilioSignature := c.Get("X-Twilio-Signature")
		if twilioSignature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		fullURL := getFullURL(c, baseURL)

		formParams := make(map[string]string)
		if c.Method() == fiber.MethodPost {
			c.Request().PostArgs().VisitAll(func(key, value []byte) {
				formParams[string(key)] = string(value)
			})
		}

		if !validator.Validate(fullURL, formParams, twilioSignature) {
			log.Printf("🚫 Rejected webhook with invalid signature for %s", fullURL)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

// getFullURL reconstructs the URL Twilio signed, including the query string.
// Priority: configured base URL > X-Forwarded-* headers > request host.
func getFullURL(c *fiber.Ctx, baseURL func() string) string {
	base := ""
	if baseURL != nil {
		base = strings.TrimRight(baseURL(), "/")
	}
	if base == "" {
		proto := c.Get("X-Forwarded-Proto")
		host := c.Get("X-Forwarded-Host")
		if proto == "" || host == "" {
			proto, host = c.Protocol(), c.Hostname()
		}
		base = fmt.Sprintf("%s://%s", proto, host)
	}
	return base + c.OriginalURL()
}
