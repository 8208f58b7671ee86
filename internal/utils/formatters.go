package utils

import (
	"log"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Spoken provider keyword -> mail domain used to complete an address
var emailProviders = []struct {
	keyword string
	domain  string
}{
	{"gmail", "gmail.com"},
	{"जीमेल", "gmail.com"},
	{"yahoo", "yahoo.com"},
	{"याहू", "yahoo.com"},
	{"hotmail", "hotmail.com"},
	{"outlook", "outlook.com"},
}

var (
	// longest first so "at the rate of" wins over "at the rate"
	atPhrases = [][]string{
		{"at", "the", "rate", "of"},
		{"at", "the", "rate"},
		{"at", "d", "rate"},
		{"एट", "द", "रेट"},
		{"ऐट", "द", "रेट"},
	}
	atWords  = map[string]bool{"at": true, "एट": true, "ऐट": true}
	dotWords = map[string]bool{"dot": true, "डॉट": true, "डोट": true}
)

var bloodLetters = map[string]string{
	"a": "A", "ay": "A", "ए": "A",
	"b": "B", "be": "B", "bee": "B", "बी": "B",
	"ab": "AB", "एबी": "AB",
	"o": "O", "oh": "O", "ओ": "O", "ओह": "O",
}

// Words after which a lone "a" is the article ("I am a B positive")
var articleLeads = map[string]bool{
	"is": true, "am": true, "was": true, "its": true, "s": true,
	"have": true, "has": true, "got": true,
}

var (
	positiveWords = map[string]bool{"positive": true, "pos": true, "plus": true, "पॉजिटिव": true, "पॉज़िटिव": true, "पोजिटिव": true, "प्लस": true}
	negativeWords = map[string]bool{"negative": true, "neg": true, "minus": true, "नेगेटिव": true, "नेगटिव": true, "माइनस": true}
)

// foldCase puts speech text into NFC and lower case so both scripts compare byte-wise
func foldCase(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// NormalizeEmail turns a spoken email address into its written form.
// "ramesh at the rate gmail dot com" becomes "ramesh@gmail.com". On any
// internal failure the input is returned unchanged.
func NormalizeEmail(raw string) (email string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  email formatting error: %v", r)
			email = raw
		}
	}()

	text := foldCase(raw)
	domain := detectProvider(text)

	text = strings.Map(func(r rune) rune {
		switch r {
		case '!', '?', ',', ';':
			return -1
		}
		return r
	}, text)

	var b strings.Builder
	tokens := strings.Fields(text)
	for i := 0; i < len(tokens); i++ {
		if n := atPhraseAt(tokens, i); n > 0 {
			b.WriteByte('@')
			i += n - 1
			continue
		}
		switch tok := tokens[i]; {
		case atWords[tok]:
			b.WriteByte('@')
		case dotWords[tok]:
			b.WriteByte('.')
		default:
			b.WriteString(tok)
		}
	}
	email = strings.Trim(b.String(), ".")

	// Only the last "@" separates local part and domain
	if strings.Count(email, "@") > 1 {
		i := strings.LastIndex(email, "@")
		email = strings.ReplaceAll(email[:i], "@", "") + email[i:]
	}

	if domain == "" {
		return email
	}
	if !strings.Contains(email, "@") {
		local := email
		for _, suffix := range []string{"." + domain, domain, providerKeyword(domain, text)} {
			if suffix != "" && strings.HasSuffix(local, suffix) {
				local = strings.TrimSuffix(local, suffix)
				break
			}
		}
		email = strings.TrimRight(local, ".") + "@" + domain
		return email
	}
	// "kat at gmail" leaves only the provider keyword after the @
	at := strings.LastIndex(email, "@")
	if host := email[at+1:]; host == "" || host == providerKeyword(domain, text) {
		email = email[:at+1] + domain
	}
	return email
}

// atPhraseAt returns how many tokens starting at i spell a spoken "@", or 0
func atPhraseAt(tokens []string, i int) int {
	for _, phrase := range atPhrases {
		if i+len(phrase) > len(tokens) {
			continue
		}
		match := true
		for j, w := range phrase {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return len(phrase)
		}
	}
	return 0
}

func detectProvider(text string) string {
	for _, p := range emailProviders {
		if strings.Contains(text, p.keyword) {
			return p.domain
		}
	}
	return ""
}

// providerKeyword returns the keyword for domain that occurs in text
func providerKeyword(domain, text string) string {
	for _, p := range emailProviders {
		if p.domain == domain && strings.Contains(text, p.keyword) {
			return p.keyword
		}
	}
	return ""
}

// NormalizeBloodGroup maps a spoken blood group ("b positive", "बी पॉजिटिव")
// to A, B, AB or O with an optional +/- sign. Text without a recognizable
// group letter is returned unchanged.
func NormalizeBloodGroup(raw string) (group string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️  blood group formatting error: %v", r)
			group = raw
		}
	}()

	text := foldCase(raw)
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r)
	})

	letter := ""
	prev := ""
	sign := ""
	for i, tok := range tokens {
		switch {
		case positiveWords[tok]:
			if sign == "" {
				sign = "+"
			}
			continue
		case negativeWords[tok]:
			if sign == "" {
				sign = "-"
			}
			continue
		}

		if tok == "a" && i > 0 && articleLeads[tokens[i-1]] &&
			i+1 < len(tokens) && bloodLetters[tokens[i+1]] != "" {
			prev = ""
			continue
		}

		l, ok := bloodLetters[tok]
		if !ok {
			prev = ""
			continue
		}
		if letter == "AB" {
			continue
		}
		if (prev == "A" && l == "B") || (prev == "B" && l == "A") {
			l = "AB"
		}
		letter = l
		prev = l
	}
	if letter == "" {
		return raw
	}

	if sign == "" {
		switch {
		case strings.ContainsRune(text, '+'):
			sign = "+"
		case strings.ContainsAny(text, "-−"):
			sign = "-"
		}
	}
	return letter + sign
}
