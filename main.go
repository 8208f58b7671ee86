package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"github.com/sankalpiq/voice-agent/database"
	"github.com/sankalpiq/voice-agent/internal/config"
	"github.com/sankalpiq/voice-agent/internal/handlers"
	"github.com/sankalpiq/voice-agent/internal/jobs"
	"github.com/sankalpiq/voice-agent/internal/routes"
	"github.com/sankalpiq/voice-agent/internal/services"
	"github.com/sankalpiq/voice-agent/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Public callback URL (static or discovered from ngrok)
	webhook := jobs.NewWebhookDiscovery(cfg.NgrokAPIURL, cfg.WebhookURL)
	webhook.Start(ctx)

	// Local registration log
	var local storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		local = storage.NewMemoryStore("memory")
	} else {
		local = storage.NewCSVStore(cfg.UserDataCSV)
		log.Printf("✅ Registrations are written to %s", cfg.UserDataCSV)
	}

	// Best-effort mirrors
	var mirrors []storage.Store
	sheetsMirror := services.NewSheetsMirror(cfg.GoogleCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsWorksheet)
	if sheetsMirror.Configured() {
		mirrors = append(mirrors, sheetsMirror)
		log.Printf("✅ Google Sheets mirror enabled (%s)", sheetsMirror.Name())
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		log.Println("📦 Connecting to PostgreSQL database...")
		var err error
		db, err = database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("⚠️  Postgres mirror disabled: %v", err)
			db = nil
		} else {
			mirrors = append(mirrors, storage.NewDatabaseStore(db))
		}
	}

	var notifier services.Notifier
	emailNotifier := services.NewEmailNotifier(services.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.GmailAddress,
		Password: cfg.GmailAppPassword,
		OrgName:  cfg.OrgName,
		Website:  cfg.OrgWebsite,
	})
	if emailNotifier.Configured() {
		notifier = emailNotifier
	}

	sink := services.NewPersistenceSink(local, notifier, cfg.MirrorTimeout, mirrors...)

	// Reasoning backend
	llm := services.NewChatClient(services.LLMConfig{
		APIKey:     cfg.LLMAPIKey,
		BaseURL:    cfg.LLMBaseURL,
		Model:      cfg.LLMModel,
		MaxRetries: 1,
	})
	translator := services.NewLLMTranslator(llm, cfg.TranslateTimeout)
	responder := services.NewKnowledgeResponder(llm, cfg.OrgName, cfg.AnswerTimeout, cfg.KnowledgeMaxBytes)
	knowledge := services.NewKnowledgeBase(cfg.KnowledgeBaseFile)

	engine := services.NewCallFlowEngine(services.FlowConfig{
		Prompts:        services.NewPrompts(cfg.OrgName),
		Voice:          services.Voice{Name: cfg.Voice, Language: cfg.VoiceLanguage},
		AnswerLanguage: cfg.AnswerLanguage(),
		BaseURL:        webhook.URL,
	}, translator, knowledge, responder, sink)

	// Outbound calls
	var placer handlers.CallPlacer
	twilioService, err := services.NewTwilioService(cfg.TwilioAccountSID, cfg.TwilioAuthToken,
		cfg.TwilioPhoneNumber, cfg.ToNumber, webhook.URL)
	if err != nil {
		log.Printf("⚠️  Warning: Twilio service not initialized: %v", err)
	} else {
		placer = twilioService
		log.Println("✅ Twilio service initialized")
	}

	var ping func() error
	if db != nil {
		ping = func() error { return database.Ping(db) }
	}
	integrations := map[string]bool{
		"twilio":   placer != nil,
		"llm":      llm.Configured(),
		"sheets":   sheetsMirror.Configured(),
		"postgres": db != nil,
		"email":    emailNotifier.Configured(),
		"ngrok":    webhook.Dynamic(),
	}

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Calling Agent v" + version,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	routes.SetupRoutes(app, routes.Dependencies{
		Voice:            handlers.NewVoiceHandler(engine),
		Calls:            handlers.NewCallHandler(placer),
		Health:           handlers.NewHealthHandler(version, webhook, ping, integrations),
		ValidateWebhooks: cfg.ValidateWebhooks(),
		AuthToken:        cfg.TwilioAuthToken,
		BaseURL:          webhook.URL,
	})

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping webhook discovery...")
		webhook.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Calling Agent starting on port %s", cfg.Port)
	log.Printf("🌍 Environment: %s", cfg.Environment)
	log.Printf("🏢 Organization: %s", cfg.OrgName)
	log.Printf("🗣️  Voice: %s (%s)", cfg.Voice, cfg.VoiceLanguage)
	log.Printf("📚 Knowledge base: %s", cfg.KnowledgeBaseFile)
	log.Println("========================================")

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("❌ Server stopped: %v", err)
	}

	log.Println("⏳ Waiting for pending registration mirrors...")
	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.MirrorTimeout+5*time.Second)
	defer cancel()
	if err := sink.Wait(waitCtx); err != nil {
		log.Printf("⚠️  Some mirrors did not finish: %v", err)
	}
	log.Println("👋 Bye")
}
