package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// callCreator is the part of the Twilio REST API used to originate calls
type callCreator interface {
	CreateCall(params *twilioApi.CreateCallParams) (*twilioApi.ApiV2010Call, error)
}

type TwilioService struct {
	calls   callCreator
	from    string
	to      string
	baseURL func() string
}

// NewTwilioService creates a service that places outbound calls from one
// number to the configured destination. baseURL returns the public webhook base.
func NewTwilioService(accountSid, authToken, from, to string, baseURL func() string) (*TwilioService, error) {
	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		calls:   client.Api,
		from:    from,
		to:      to,
		baseURL: baseURL,
	}, nil
}

// PlaceCall dials the destination number and points the call at flow's start state.
// It returns the call SID.
func (t *TwilioService) PlaceCall(flow Flow) (string, error) {
	if t.to == "" {
		return "", fmt.Errorf("TO_NUMBER not configured")
	}
	base := ""
	if t.baseURL != nil {
		base = strings.TrimRight(t.baseURL(), "/")
	}
	if base == "" {
		return "", fmt.Errorf("public webhook URL not available yet")
	}

	webhook := fmt.Sprintf("%s/voice/%s/%s", base, flow, StateStart)
	params := &twilioApi.CreateCallParams{}
	params.SetTo(t.to)
	params.SetFrom(t.from)
	params.SetUrl(webhook)
	params.SetMethod("POST")

	resp, err := t.calls.CreateCall(params)
	if err != nil {
		log.Printf("❌ Failed to place %s call: %v", flow, err)
		return "", err
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned no call sid")
	}

	log.Printf("📞 %s call placed! SID: %s, Webhook: %s", flow, *resp.Sid, webhook)
	return *resp.Sid, nil
}
