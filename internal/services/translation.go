package services

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TranslationFailedMarker is appended to text that could not be translated
const TranslationFailedMarker = " (translation failed)"

// Translator converts spoken text into a working language
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Completer is the single-turn reasoning call the LLM-backed services need
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMTranslator translates through the chat backend
type LLMTranslator struct {
	llm     Completer
	timeout time.Duration
}

// NewLLMTranslator creates a translator bounded by timeout per call
func NewLLMTranslator(llm Completer, timeout time.Duration) *LLMTranslator {
	return &LLMTranslator{llm: llm, timeout: timeout}
}

func (t *LLMTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	if target == "" {
		target = "en"
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	system := fmt.Sprintf("You translate short phone-call transcripts into %s. "+
		"Reply with the translation only, without quotes or explanations. "+
		"Keep names, email addresses and numbers as they are.", languageName(target))
	out, err := t.llm.Complete(ctx, system, text)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return out, nil
}

// TranslateBestEffort returns the translation, or text with TranslationFailedMarker on any failure
func TranslateBestEffort(ctx context.Context, t Translator, text, target string) string {
	return bestEffort("translation", text+TranslationFailedMarker, func() (string, error) {
		if t == nil {
			return "", fmt.Errorf("translate: %w", ErrNotConfigured)
		}
		return t.Translate(ctx, text, target)
	})
}

// translateOrKeep returns the translation or the untouched text, never the failure marker
func translateOrKeep(ctx context.Context, t Translator, text, target string) string {
	return bestEffort("translation", text, func() (string, error) {
		if t == nil {
			return "", fmt.Errorf("translate: %w", ErrNotConfigured)
		}
		out, err := t.Translate(ctx, text, target)
		if err == nil && strings.TrimSpace(out) == "" {
			return "", fmt.Errorf("translate: empty result")
		}
		return out, err
	})
}

func languageName(code string) string {
	switch strings.ToLower(code) {
	case "en":
		return "English"
	case "hi":
		return "Hindi"
	case "mr":
		return "Marathi"
	case "bn":
		return "Bengali"
	case "ta":
		return "Tamil"
	case "te":
		return "Telugu"
	default:
		return code
	}
}
