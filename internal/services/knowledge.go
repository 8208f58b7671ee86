package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"
)

// KnowledgeBase reads the static knowledge document. It is read fresh for
// every question; concurrent reads of the same file share one disk read.
type KnowledgeBase struct {
	path  string
	group singleflight.Group
}

// NewKnowledgeBase creates a loader for the document at path
func NewKnowledgeBase(path string) *KnowledgeBase {
	return &KnowledgeBase{path: path}
}

// Load returns the full document text
func (k *KnowledgeBase) Load(ctx context.Context) (string, error) {
	ch := k.group.DoChan(k.path, func() (interface{}, error) {
		b, err := os.ReadFile(k.path)
		if err != nil {
			return "", fmt.Errorf("load knowledge base: %w", err)
		}
		return string(b), nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Fallback answers when the reasoning backend cannot be reached
var answerFallbacks = map[string]string{
	"hi": "मुझे इस सवाल का जवाब नहीं मिला। कृपया बाद में पुनः प्रयास करें।",
	"en": "I could not find an answer to that question. Please try again later.",
}

// KnowledgeResponder answers caller questions from the knowledge document only
type KnowledgeResponder struct {
	llm      Completer
	org      string
	timeout  time.Duration
	maxBytes int
}

// NewKnowledgeResponder creates a responder. maxBytes caps how much of the
// document is placed in the prompt; zero or less means no cap.
func NewKnowledgeResponder(llm Completer, org string, timeout time.Duration, maxBytes int) *KnowledgeResponder {
	return &KnowledgeResponder{llm: llm, org: org, timeout: timeout, maxBytes: maxBytes}
}

// Answer returns a short spoken answer in language, or a fixed apology in that language on failure.
func (r *KnowledgeResponder) Answer(ctx context.Context, question, knowledge, language string) string {
	return bestEffort("knowledge answer", AnswerFallback(language), func() (string, error) {
		if r.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
		system, user := r.prompt(question, knowledge, language)
		return r.llm.Complete(ctx, system, user)
	})
}

func (r *KnowledgeResponder) prompt(question, knowledge, language string) (string, string) {
	org := r.org
	if org == "" {
		org = "the organization"
	}
	lang := languageName(language)

	system := fmt.Sprintf(`You are a helpful assistant for %s speaking with a caller on the phone.
Use ONLY the knowledge base information given by the user to answer the question.
If the answer is not found in that information, politely say that you do not have that information.
Always answer in %s. Keep the answer concise (2-3 sentences maximum).`, org, lang)

	user := fmt.Sprintf("KNOWLEDGE BASE INFORMATION:\n%s\n\nUSER QUESTION: %s",
		capText(knowledge, r.maxBytes), strings.TrimSpace(question))
	return system, user
}

// AnswerFallback is the apology spoken when no answer could be produced
func AnswerFallback(language string) string {
	if s, ok := answerFallbacks[strings.ToLower(language)]; ok {
		return s
	}
	return answerFallbacks["en"]
}

// capText cuts s to at most max bytes on a rune boundary
func capText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	log.Printf("⚠️  knowledge base truncated from %d to %d bytes", len(s), cut)
	return s[:cut]
}
