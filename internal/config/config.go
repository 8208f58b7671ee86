package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port                     string
	Environment              string
	DisableWebhookValidation bool

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	ToNumber          string

	// WebhookURL is the static public base URL; NgrokAPIURL enables tunnel discovery instead.
	WebhookURL  string
	NgrokAPIURL string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	KnowledgeBaseFile string
	KnowledgeMaxBytes int
	UserDataCSV       string

	GoogleCredentialsFile string
	SheetsSpreadsheetID   string
	SheetsWorksheet       string

	DatabaseURL string

	SMTPHost         string
	SMTPPort         int
	GmailAddress     string
	GmailAppPassword string

	OrgName       string
	OrgWebsite    string
	Voice         string
	VoiceLanguage string

	TranslateTimeout time.Duration
	AnswerTimeout    time.Duration
	MirrorTimeout    time.Duration
}

// Load reads .env (if present) and environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found - checking environment variables")
	}

	cfg := Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		DisableWebhookValidation: getBool("DISABLE_WEBHOOK_VALIDATION", false),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		ToNumber:          os.Getenv("TO_NUMBER"),

		WebhookURL:  strings.TrimRight(os.Getenv("WEBHOOK_URL"), "/"),
		NgrokAPIURL: strings.TrimRight(os.Getenv("NGROK_API_URL"), "/"),

		LLMAPIKey:  getEnv("LLM_API_KEY", os.Getenv("GEMINI_API_KEY")),
		LLMBaseURL: getEnv("LLM_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		LLMModel:   getEnv("LLM_MODEL", "gemini-1.5-flash"),

		KnowledgeBaseFile: getEnv("KNOWLEDGE_BASE_FILE", "data/knowledge.txt"),
		KnowledgeMaxBytes: getInt("KNOWLEDGE_MAX_BYTES", 64*1024),
		UserDataCSV:       getEnv("USER_DATA_CSV", "data/user_data.csv"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		SheetsSpreadsheetID:   os.Getenv("SHEETS_SPREADSHEET_ID"),
		SheetsWorksheet:       getEnv("SHEETS_WORKSHEET", "Sheet1"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getInt("SMTP_PORT", 587),
		GmailAddress:     os.Getenv("GMAIL_ADDRESS"),
		GmailAppPassword: os.Getenv("GMAIL_APP_PASSWORD"),

		OrgName:       getEnv("ORG_NAME", "Sankalpiq Foundation"),
		OrgWebsite:    getEnv("ORG_WEBSITE", "https://sankalpiq.co.in"),
		Voice:         getEnv("VOICE", "Polly.Aditi"),
		VoiceLanguage: getEnv("VOICE_LANGUAGE", "hi-IN"),

		TranslateTimeout: getDuration("TRANSLATE_TIMEOUT", 4*time.Second),
		AnswerTimeout:    getDuration("ANSWER_TIMEOUT", 8*time.Second),
		MirrorTimeout:    getDuration("MIRROR_TIMEOUT", 20*time.Second),
	}

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioPhoneNumber == "" {
		log.Println("⚠️  Twilio credentials not found - outbound calls and signature checks are limited")
	}
	if cfg.LLMAPIKey == "" {
		log.Println("⚠️  LLM_API_KEY not set - translation and FAQ answers will use fallbacks")
	}
	if cfg.GoogleCredentialsFile == "" || cfg.SheetsSpreadsheetID == "" {
		log.Println("⚠️  Google Sheets not configured - spreadsheet mirror disabled")
	}
	if cfg.GmailAddress == "" || cfg.GmailAppPassword == "" {
		log.Println("⚠️  Email credentials not found - thank-you emails disabled")
	}

	log.Printf("config: PORT=%s ENVIRONMENT=%s", cfg.Port, cfg.Environment)
	return cfg
}

// ValidateWebhooks reports whether Twilio signatures must be checked.
func (c Config) ValidateWebhooks() bool {
	if c.DisableWebhookValidation || c.Environment == "development" {
		return false
	}
	return c.TwilioAuthToken != ""
}

// AnswerLanguage is the language code spoken answers are produced in ("hi" for "hi-IN").
func (c Config) AnswerLanguage() string {
	lang, _, _ := strings.Cut(c.VoiceLanguage, "-")
	if lang == "" {
		return "hi"
	}
	return strings.ToLower(lang)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  invalid %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("⚠️  invalid %s=%q, using %t", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		log.Printf("⚠️  invalid %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
