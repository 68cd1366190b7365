package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/robfig/cron/v3"

	"github.com/chatandika/wa-automation-be/internal/core/llm"
	"github.com/chatandika/wa-automation-be/internal/core/whatsapp"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/handlers"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/repositories"
	"github.com/chatandika/wa-automation-be/internal/modules/inbox/services"
	"github.com/chatandika/wa-automation-be/internal/shared/config"
	"github.com/chatandika/wa-automation-be/internal/shared/database"
	"github.com/chatandika/wa-automation-be/internal/shared/utils"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Env)
	log.Printf("🚀 Starting automation-api on port %s", cfg.Port)

	// Init database
	db := database.NewDB(cfg.DatabaseURL)
	defer db.Close()

	// Init repositories
	workspaceRepo := repositories.NewWorkspaceRepo(db.GORM)
	conversationRepo := repositories.NewConversationRepo(db.GORM)
	messageRepo := repositories.NewMessageRepo(db.GORM)
	chatbotRepo := repositories.NewChatbotRepo(db.GORM)
	settingsRepo := repositories.NewSettingsRepo(db.GORM)
	cannedRepo := repositories.NewCannedResponseRepo(db.GORM)
	teamRepo := repositories.NewTeamRepo(db.GORM)

	// Init LLM provider for AI rules
	llmCfg, err := llm.LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load LLM config: %v", err)
	}
	llmProvider, err := llm.NewProvider(llmCfg)
	if err != nil {
		log.Fatalf("❌ Failed to init LLM provider: %v", err)
	}
	llmService := llm.NewService(llmProvider)
	log.Printf("🤖 LLM provider: %s", llmService.ProviderName())

	// Init WhatsApp channel service
	waCfg, err := whatsapp.LoadProviderFromEnv()
	if err != nil {
		log.Fatalf("❌ Failed to load WhatsApp config: %v", err)
	}
	waService := whatsapp.NewService(waCfg)
	defer waService.Shutdown()
	channels := services.NewChannelResolver(waService)

	// Init services
	settingsService := services.NewSettingsService(settingsRepo)
	chatbotService := services.NewChatbotService(chatbotRepo)
	webhookService := services.NewWebhookService(
		workspaceRepo, conversationRepo, messageRepo, chatbotRepo,
		cannedRepo, teamRepo, settingsService, channels, llmService,
		cfg.FlowMaxSteps,
	)
	followUpService := services.NewFollowUpService(
		workspaceRepo, conversationRepo, messageRepo, cannedRepo,
		settingsService, channels, llmService,
	)

	// Init handlers
	webhookHandler := handlers.NewWebhookHandler(webhookService, workspaceRepo)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	chatbotHandler := handlers.NewChatbotHandler(chatbotService)
	conversationHandler := handlers.NewConversationHandler(conversationRepo, messageRepo)
	whatsappHandler := handlers.NewWhatsAppHandler(workspaceRepo, channels)
	healthHandler := handlers.NewHealthHandler(db)

	// Follow-up sweep on a cron schedule
	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.FollowUpSchedule, func() {
		followUpService.Run(context.Background())
	}); err != nil {
		log.Fatalf("❌ Invalid follow-up schedule %q: %v", cfg.FollowUpSchedule, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Init Fiber app
	app := fiber.New(fiber.Config{
		AppName: "WhatsApp Automation API",
	})

	// Middleware
	app.Use(cors.New())

	// Health check
	app.Get("/health", healthHandler.Check)

	// Webhook routes
	app.Get("/webhook", webhookHandler.Verify)
	app.Post("/webhook", webhookHandler.Receive)

	// Settings routes
	app.Get("/workspaces/:workspace_id/settings", settingsHandler.GetSettings)
	app.Put("/workspaces/:workspace_id/settings", settingsHandler.UpdateSettings)

	// Chatbot routes
	app.Get("/workspaces/:workspace_id/chatbots", chatbotHandler.ListChatbots)
	app.Post("/workspaces/:workspace_id/chatbots", chatbotHandler.CreateChatbot)
	app.Get("/chatbots/:id", chatbotHandler.GetChatbot)
	app.Put("/chatbots/:id", chatbotHandler.UpdateChatbot)
	app.Delete("/chatbots/:id", chatbotHandler.DeleteChatbot)

	// Conversation routes
	app.Get("/conversations/:id", conversationHandler.GetConversation)
	app.Get("/conversations/:id/messages", conversationHandler.GetMessages)

	// WhatsApp pairing QR
	app.Get("/workspaces/:workspace_id/whatsapp/qr", whatsappHandler.GetQR)

	log.Printf("✅ automation-api running at :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
