package services

import (
	"strconv"

	"github.com/twilio/twilio-go/twiml"
)

// FallbackTwiML is served when even the apology reply cannot be rendered
const FallbackTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response><Say>Sorry, there was an error with the application.</Say></Response>`

// Voice selects the text-to-speech voice and the recognition language
type Voice struct {
	Name     string
	Language string
}

// Reply accumulates the TwiML verbs for one webhook response
type Reply struct {
	voice    Voice
	elements []twiml.Element
}

// NewReply starts an empty response spoken with v
func NewReply(v Voice) *Reply {
	return &Reply{voice: v}
}

func (r *Reply) say(text string) *twiml.VoiceSay {
	return &twiml.VoiceSay{
		Message:  text,
		Voice:    r.voice.Name,
		Language: r.voice.Language,
	}
}

// Say speaks text
func (r *Reply) Say(text string) *Reply {
	r.elements = append(r.elements, r.say(text))
	return r
}

// Gather speaks prompt and listens for speech for timeout seconds, posting the result to action.
func (r *Reply) Gather(action string, timeout int, prompt string) *Reply {
	g := &twiml.VoiceGather{
		Input:    "speech",
		Action:   action,
		Method:   "POST",
		Timeout:  strconv.Itoa(timeout),
		Language: r.voice.Language,
	}
	if prompt != "" {
		g.InnerElements = []twiml.Element{r.say(prompt)}
	}
	r.elements = append(r.elements, g)
	return r
}

// Redirect hands the call to another state
func (r *Reply) Redirect(url string) *Reply {
	r.elements = append(r.elements, &twiml.VoiceRedirect{Url: url, Method: "POST"})
	return r
}

// Hangup ends the call
func (r *Reply) Hangup() *Reply {
	r.elements = append(r.elements, &twiml.VoiceHangup{})
	return r
}

// TwiML renders the response document
func (r *Reply) TwiML() (string, error) {
	return twiml.Voice(r.elements)
}
