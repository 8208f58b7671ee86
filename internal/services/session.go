package services

import (
	"log"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// Flow selects which conversational script a call follows
type Flow string

const (
	FlowFAQ  Flow = "faq"
	FlowInfo Flow = "info"
)

// ParseFlow accepts a flow name from a URL path segment
func ParseFlow(s string) (Flow, bool) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case FlowFAQ:
		return FlowFAQ, true
	case FlowInfo:
		return FlowInfo, true
	}
	return "", false
}

// Query parameter names carried in action URLs
const (
	paramName    = "name"
	paramEmail   = "email"
	paramAttempt = "attempt"
)

const maxFieldRunes = 200

// CallSession is everything known about a call so far. It is rebuilt from
// the request URL on every turn and never stored by the server.
type CallSession struct {
	Flow    Flow
	Name    string
	Email   string
	Attempt int
}

// DecodeSession reads session fields from a raw query string. The query is
// caller-controlled, so malformed pairs are dropped and fields are cleaned.
func DecodeSession(flow Flow, rawQuery string) CallSession {
	vals, err := url.ParseQuery(rawQuery)
	if err != nil {
		log.Printf("⚠️  Malformed session query %q: %v", rawQuery, err)
	}

	s := CallSession{
		Flow:    flow,
		Name:    cleanField(vals.Get(paramName)),
		Email:   cleanField(vals.Get(paramEmail)),
		Attempt: 1,
	}
	if n, err := strconv.Atoi(strings.TrimSpace(vals.Get(paramAttempt))); err == nil && n > 1 {
		s.Attempt = n
	}
	return s
}

// Query encodes the session for the next action URL. Empty fields are omitted
// and the attempt counter is only carried while it is above one.
func (s CallSession) Query() url.Values {
	v := url.Values{}
	if s.Name != "" {
		v.Set(paramName, s.Name)
	}
	if s.Email != "" {
		v.Set(paramEmail, s.Email)
	}
	if s.Attempt > 1 {
		v.Set(paramAttempt, strconv.Itoa(s.Attempt))
	}
	return v
}

// cleanField trims, strips control characters and bounds the length of a carried field
func cleanField(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)

	if n := 0; len(s) > maxFieldRunes {
		for i := range s {
			if n == maxFieldRunes {
				return strings.TrimSpace(s[:i])
			}
			n++
		}
	}
	return s
}
