package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestLLMTranslator_Translate(t *testing.T) {
	fc := &fakeCompleter{reply: "My name is Ramesh"}
	tr := NewLLMTranslator(fc, 0)

	got, err := tr.Translate(context.Background(), "मेरा नाम रमेश है", "")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "My name is Ramesh" {
		t.Fatalf("got %q", got)
	}
	if !strings.Contains(fc.systems[0], "English") {
		t.Fatalf("default target should be English, system prompt: %q", fc.systems[0])
	}

	got, err = tr.Translate(context.Background(), "   ", "en")
	if err != nil || got != "" {
		t.Fatalf("blank input should pass through, got %q %v", got, err)
	}
	if len(fc.users) != 1 {
		t.Fatal("blank input must not reach the backend")
	}
}

func TestTranslateBestEffort_Failure(t *testing.T) {
	tr := NewLLMTranslator(&fakeCompleter{err: errors.New("quota")}, 0)
	got := TranslateBestEffort(context.Background(), tr, "namaste", "en")
	if got != "namaste (translation failed)" {
		t.Fatalf("got %q", got)
	}

	tr = NewLLMTranslator(&fakeCompleter{panics: true}, 0)
	got = TranslateBestEffort(context.Background(), tr, "namaste", "en")
	if got != "namaste"+TranslationFailedMarker {
		t.Fatalf("panic should degrade to marker, got %q", got)
	}

	if got := TranslateBestEffort(context.Background(), nil, "x", "en"); got != "x"+TranslationFailedMarker {
		t.Fatalf("nil translator: got %q", got)
	}
}

func TestTranslateBestEffort_OverHTTP(t *testing.T) {
	srv, _ := chatServer(t, http.StatusTooManyRequests, "")
	tr := NewLLMTranslator(NewChatClient(LLMConfig{APIKey: "k", BaseURL: srv.URL + "/", Model: "m"}), 0)

	got := TranslateBestEffort(context.Background(), tr, "कैसे हो", "en")
	if got != "कैसे हो (translation failed)" {
		t.Fatalf("got %q", got)
	}
}

func TestTranslateOrKeep(t *testing.T) {
	if got := translateOrKeep(context.Background(), NewLLMTranslator(&fakeCompleter{err: errors.New("down")}, 0), "रमेश", "en"); got != "रमेश" {
		t.Fatalf("failure should keep original, got %q", got)
	}
	if got := translateOrKeep(context.Background(), NewLLMTranslator(&fakeCompleter{reply: "Ramesh"}, 0), "रमेश", "en"); got != "Ramesh" {
		t.Fatalf("got %q", got)
	}
}
