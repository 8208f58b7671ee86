package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/sankalpiq/voice-agent/internal/utils"
)

var (
	// ErrUnknownState is returned for a (flow, state) pair with no handler
	ErrUnknownState = errors.New("unknown call state")

	// ErrMissingContext marks a turn whose URL lacks a field an earlier state should have carried
	ErrMissingContext = errors.New("missing call context")
)

// State names a step of the call; it is the last path segment of its webhook URL
type State string

const (
	StateStart       State = "start"
	StateCollectName State = "collect-name"
	StateIntro       State = "intro"
	StateAnswer      State = "answer"
	StateContinue    State = "continue"
	StateEmail       State = "email"
	StateBlood       State = "blood"
	StateFinalize    State = "finalize"
	StateTerminate   State = "terminate"
)

// Listening windows in seconds
const (
	shortListen    = 5
	questionListen = 10
	maxAttempts    = 2
)

// Turn is one webhook callback from the telephony provider
type Turn struct {
	Flow     string
	State    string
	RawQuery string
	Speech   string
	CallSID  string
}

// KnowledgeSource provides the knowledge document text
type KnowledgeSource interface {
	Load(ctx context.Context) (string, error)
}

// Answerer produces a spoken answer; it handles its own failures
type Answerer interface {
	Answer(ctx context.Context, question, knowledge, language string) string
}

// RecordSink stores a completed registration and reports whether it was saved
type RecordSink interface {
	Persist(ctx context.Context, name, email, bloodGroup string) bool
}

// FlowConfig holds what the engine says and where it points the provider next
type FlowConfig struct {
	Prompts        Prompts
	Voice          Voice
	AnswerLanguage string
	// BaseURL returns the public base for action URLs; empty means relative URLs
	BaseURL func() string
}

type routeKey struct {
	flow  Flow
	state State
}

type stateHandler func(ctx context.Context, s CallSession, t Turn) (*Reply, error)

// CallFlowEngine decides the reply for every turn of a call. It keeps no
// per-call state: everything a turn needs arrives in its URL and form body.
type CallFlowEngine struct {
	cfg        FlowConfig
	translator Translator
	kb         KnowledgeSource
	answerer   Answerer
	sink       RecordSink
	routes     map[routeKey]stateHandler
}

// NewCallFlowEngine wires the engine and its routing table
func NewCallFlowEngine(cfg FlowConfig, translator Translator, kb KnowledgeSource, answerer Answerer, sink RecordSink) *CallFlowEngine {
	if cfg.AnswerLanguage == "" {
		cfg.AnswerLanguage = "hi"
	}
	if cfg.Prompts.Org == "" {
		cfg.Prompts = NewPrompts("")
	}

	e := &CallFlowEngine{
		cfg:        cfg,
		translator: translator,
		kb:         kb,
		answerer:   answerer,
		sink:       sink,
	}

	e.routes = map[routeKey]stateHandler{
		{FlowFAQ, StateIntro}:     e.intro,
		{FlowFAQ, StateAnswer}:    e.answer,
		{FlowFAQ, StateContinue}:  e.continueFAQ,
		{FlowInfo, StateEmail}:    e.askEmail,
		{FlowInfo, StateBlood}:    e.askBlood,
		{FlowInfo, StateFinalize}: e.finalize,
	}
	for _, f := range []Flow{FlowFAQ, FlowInfo} {
		e.routes[routeKey{f, StateStart}] = e.start
		e.routes[routeKey{f, StateCollectName}] = e.collectName
		e.routes[routeKey{f, StateTerminate}] = e.terminate
	}
	return e
}

// Handle returns the TwiML document for a turn. It always returns a valid
// document; failures and panics become a spoken apology.
func (e *CallFlowEngine) Handle(ctx context.Context, t Turn) (doc string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Call %s panicked in %s/%s: %v", t.CallSID, t.Flow, t.State, r)
			doc = e.apology()
		}
	}()

	reply, err := e.dispatch(ctx, t)
	if err != nil {
		log.Printf("❌ Call %s failed in %s/%s: %v", t.CallSID, t.Flow, t.State, err)
		return e.apology()
	}

	doc, err = reply.TwiML()
	if err != nil {
		log.Printf("❌ Call %s: render reply: %v", t.CallSID, err)
		return e.apology()
	}
	return doc
}

func (e *CallFlowEngine) dispatch(ctx context.Context, t Turn) (*Reply, error) {
	flow, ok := ParseFlow(t.Flow)
	if !ok {
		return nil, fmt.Errorf("%w: flow %q", ErrUnknownState, t.Flow)
	}
	h, ok := e.routes[routeKey{flow, State(t.State)}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownState, flow, t.State)
	}

	t.Speech = strings.TrimSpace(t.Speech)
	return h(ctx, DecodeSession(flow, t.RawQuery), t)
}

func (e *CallFlowEngine) apology() string {
	doc, err := NewReply(Voice{}).Say(e.cfg.Prompts.Apology()).TwiML()
	if err != nil {
		return FallbackTwiML
	}
	return doc
}

// URL returns the action URL for state carrying s
func (e *CallFlowEngine) URL(state State, s CallSession) string {
	base := ""
	if e.cfg.BaseURL != nil {
		base = strings.TrimRight(e.cfg.BaseURL(), "/")
	}
	u := fmt.Sprintf("%s/voice/%s/%s", base, s.Flow, state)
	if q := s.Query().Encode(); q != "" {
		u += "?" + q
	}
	return u
}

func (e *CallFlowEngine) reply() *Reply { return NewReply(e.cfg.Voice) }

func (e *CallFlowEngine) toTerminate(s CallSession) *Reply {
	return e.reply().Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow}))
}

// lost ends a call whose URL no longer carries required context
func (e *CallFlowEngine) lost(s CallSession, t Turn, field string) (*Reply, error) {
	log.Printf("⚠️  Call %s: %v: %s/%s without %s", t.CallSID, ErrMissingContext, s.Flow, t.State, field)
	return e.toTerminate(s), nil
}

func (e *CallFlowEngine) start(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	next := e.URL(StateCollectName, CallSession{Flow: s.Flow, Attempt: s.Attempt})
	return e.reply().
		Gather(next, shortListen, e.cfg.Prompts.Greeting(s.Flow)).
		Redirect(next), nil
}

func (e *CallFlowEngine) collectName(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if t.Speech == "" {
		if s.Attempt < maxAttempts {
			log.Printf("🔁 Call %s: no name heard (attempt %d), asking again", t.CallSID, s.Attempt)
			retry := CallSession{Flow: s.Flow, Attempt: s.Attempt + 1}
			return e.reply().Say(e.cfg.Prompts.NameRetry()).Redirect(e.URL(StateStart, retry)), nil
		}
		log.Printf("📴 Call %s: no name after %d attempts", t.CallSID, s.Attempt)
		return e.reply().Say(e.cfg.Prompts.NameNotFound()).Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow})), nil
	}

	translated := TranslateBestEffort(ctx, e.translator, t.Speech, "en")
	log.Printf("👤 Call %s: name %s (Original: %s)", t.CallSID, translated, t.Speech)

	next := CallSession{Flow: s.Flow, Name: cleanField(t.Speech)}
	if s.Flow == FlowInfo {
		return e.reply().Redirect(e.URL(StateEmail, next)), nil
	}
	return e.reply().Redirect(e.URL(StateIntro, next)), nil
}

func (e *CallFlowEngine) intro(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	next := CallSession{Flow: s.Flow, Name: s.Name}
	return e.reply().
		Gather(e.URL(StateAnswer, next), questionListen, e.cfg.Prompts.Intro(s.Name)).
		Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow})), nil
}

func (e *CallFlowEngine) answer(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	if t.Speech == "" {
		return e.toTerminate(s), nil
	}

	question := TranslateBestEffort(ctx, e.translator, t.Speech, "en")
	log.Printf("❓ Call %s: question %s (Original: %s)", t.CallSID, question, t.Speech)

	var reply string
	knowledge, err := e.kb.Load(ctx)
	if err != nil {
		log.Printf("⚠️  Call %s: %v", t.CallSID, err)
		reply = AnswerFallback(e.cfg.AnswerLanguage)
	} else {
		reply = e.answerer.Answer(ctx, question, knowledge, e.cfg.AnswerLanguage)
	}
	log.Printf("🤖 Call %s: answer %s", t.CallSID, reply)

	next := CallSession{Flow: s.Flow, Name: s.Name}
	return e.reply().
		Say(reply).
		Gather(e.URL(StateContinue, next), shortListen, e.cfg.Prompts.MoreQuestions()).
		Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow})), nil
}

func (e *CallFlowEngine) continueFAQ(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	if IsAffirmative(t.Speech) {
		return e.reply().Redirect(e.URL(StateIntro, CallSession{Flow: s.Flow, Name: s.Name})), nil
	}
	return e.toTerminate(s), nil
}

func (e *CallFlowEngine) askEmail(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	next := e.URL(StateBlood, CallSession{Flow: s.Flow, Name: s.Name})
	return e.reply().
		Gather(next, shortListen, e.cfg.Prompts.AskEmail(s.Name)).
		Redirect(next), nil
}

// askBlood receives the spoken email and asks for the blood group
func (e *CallFlowEngine) askBlood(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	if t.Speech == "" {
		log.Printf("📴 Call %s: no email heard for %s", t.CallSID, s.Name)
		return e.reply().
			Say(e.cfg.Prompts.EmailMissing(s.Name)).
			Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow})), nil
	}
	log.Printf("📧 Call %s: email %s (Formatted: %s)", t.CallSID, t.Speech, utils.NormalizeEmail(t.Speech))

	next := e.URL(StateFinalize, CallSession{Flow: s.Flow, Name: s.Name, Email: cleanField(t.Speech)})
	return e.reply().
		Gather(next, shortListen, e.cfg.Prompts.AskBlood(s.Name)).
		Redirect(next), nil
}

func (e *CallFlowEngine) finalize(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	if s.Name == "" {
		return e.lost(s, t, paramName)
	}
	if s.Email == "" {
		return e.lost(s, t, paramEmail)
	}

	name := translateOrKeep(ctx, e.translator, s.Name, "en")
	email := utils.NormalizeEmail(s.Email)
	blood := ""
	if t.Speech != "" {
		blood = utils.NormalizeBloodGroup(t.Speech)
	}
	log.Printf("🧑 Call %s: name=%s (Original: %s) email=%s blood=%s (Original: %s)",
		t.CallSID, name, s.Name, email, blood, t.Speech)

	r := e.reply()
	switch {
	case !e.sink.Persist(ctx, name, email, blood):
		r.Say(e.cfg.Prompts.SaveFailed(s.Name))
	case blood == "":
		r.Say(e.cfg.Prompts.SavedWithoutBlood(s.Name))
	default:
		r.Say(e.cfg.Prompts.Saved(s.Name))
	}
	return r.Redirect(e.URL(StateTerminate, CallSession{Flow: s.Flow})), nil
}

func (e *CallFlowEngine) terminate(ctx context.Context, s CallSession, t Turn) (*Reply, error) {
	log.Printf("👋 Call %s ended (%s flow)", t.CallSID, s.Flow)
	return e.reply().Say(e.cfg.Prompts.Goodbye()).Hangup(), nil
}

var affirmatives = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true,
	"haan": true, "han": true, "ha": true, "haa": true, "ji": true,
	"हाँ": true, "हां": true, "हा": true, "जी": true,
}

// IsAffirmative reports whether speech contains a yes-word in English or Hindi
func IsAffirmative(speech string) bool {
	words := strings.FieldsFunc(strings.ToLower(speech), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})
	for _, w := range words {
		if affirmatives[w] {
			return true
		}
	}
	return false
}
