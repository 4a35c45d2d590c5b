package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"docchat-be/internal/config"
	"docchat-be/internal/controller"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/service"
	"docchat-be/pkg/documents"
	"docchat-be/pkg/embedding"
	"docchat-be/pkg/llm/factory"
)

type Container struct {
	// Controllers
	UploadController  controller.IUploadController
	ChatController    controller.IChatController
	SessionController controller.ISessionController

	// Shared by the server's session middleware
	SessionService service.ISessionService

	// Background services (exposed for main.go to run)
	CleanupService  service.ICleanupService
	ConsumerService service.IConsumerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus (in-process; carries file-release work off the request path)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "gemini" {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GoogleGeminiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Services
	sessionService := service.NewSessionService(sysLogger)
	publisherService := service.NewPublisherService(cfg.App.CleanupTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.CleanupTopic, sysLogger)
	cleanupService := service.NewCleanupService(
		sessionService,
		publisherService,
		cfg.Session.TTL,
		cfg.Session.SweepInterval,
		sysLogger,
	)
	ingestService := service.NewIngestService(
		sessionService,
		documents.NewFileLoader(),
		embeddingProvider,
		publisherService,
		cfg.Rag.ChunkSize,
		cfg.Rag.ChunkOverlap,
		sysLogger,
	)
	ragService := service.NewRagService(
		sessionService,
		embeddingProvider,
		llmProvider,
		cfg.Rag.TopK,
		cfg.Rag.Temperature,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		UploadController:  controller.NewUploadController(ingestService, publisherService, cfg, sysLogger),
		ChatController:    controller.NewChatController(ragService),
		SessionController: controller.NewSessionController(sessionService, publisherService, sysLogger),

		SessionService: sessionService,

		CleanupService:  cleanupService,
		ConsumerService: consumerService,

		Logger: sysLogger,
	}
}
