package services

import (
	"strings"
	"testing"
)

func TestReply_TwiML(t *testing.T) {
	doc, err := NewReply(Voice{Name: "Polly.Aditi", Language: "hi-IN"}).
		Say("नमस्ते <Ravi> & family").
		Gather("/voice/faq/answer?name=Ravi&attempt=2", 10, "सवाल पूछिए").
		Redirect("/voice/faq/terminate").
		TwiML()
	if err != nil {
		t.Fatalf("TwiML: %v", err)
	}

	resp := parseTwiML(t, doc)
	if len(resp.Verbs) != 3 {
		t.Fatalf("expected 3 verbs, got %d: %s", len(resp.Verbs), doc)
	}
	say := resp.Verbs[0]
	if say.Text != "नमस्ते <Ravi> & family" || say.Voice != "Polly.Aditi" || say.Language != "hi-IN" {
		t.Fatalf("unexpected say %+v", say)
	}
	g := resp.Verbs[1]
	if g.XMLName.Local != "Gather" || g.Action != "/voice/faq/answer?name=Ravi&attempt=2" || g.Timeout != "10" || g.Input != "speech" {
		t.Fatalf("unexpected gather %+v", g)
	}
	if len(g.Inner) != 1 || g.Inner[0].XMLName.Local != "Say" || g.Inner[0].Text != "सवाल पूछिए" {
		t.Fatalf("gather prompt missing: %+v", g.Inner)
	}
	if resp.Verbs[2].XMLName.Local != "Redirect" || strings.TrimSpace(resp.Verbs[2].Text) != "/voice/faq/terminate" {
		t.Fatalf("unexpected redirect %+v", resp.Verbs[2])
	}
}

func TestReply_Hangup(t *testing.T) {
	doc, err := NewReply(Voice{}).Say("bye").Hangup().TwiML()
	if err != nil {
		t.Fatal(err)
	}
	resp := parseTwiML(t, doc)
	if resp.find("Hangup") == nil {
		t.Fatalf("no hangup in %s", doc)
	}
	if resp.find("Say").Voice != "" {
		t.Fatal("empty voice should not be rendered")
	}
}

func TestFallbackTwiMLIsValid(t *testing.T) {
	resp := parseTwiML(t, FallbackTwiML)
	if got := resp.said(); len(got) != 1 || got[0] != NewPrompts("").Apology() {
		t.Fatalf("fallback says %v", got)
	}
}
