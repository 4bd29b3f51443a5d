package bootstrap

import (
	"context"
	"io"
	"log"
	"path/filepath"

	"data-chat-be/internal/config"
	"data-chat-be/internal/controller"
	"data-chat-be/internal/pkg/logger"
	"data-chat-be/internal/repository/memory"
	"data-chat-be/internal/service"
	"data-chat-be/internal/websocket"
	"data-chat-be/pkg/agent"
	"data-chat-be/pkg/dataset"
	"data-chat-be/pkg/llm/factory"
	"data-chat-be/pkg/orchestrator"
	"data-chat-be/pkg/python"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	DatasetController controller.IDatasetController
	StatsController   controller.IStatsController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	WebSocketHub    *websocket.Hub

	ChatService  service.IChatService
	Orchestrator *orchestrator.Orchestrator
	Logger       logger.ILogger

	closers []io.Closer
}

func NewContainer(ctx context.Context, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)

	// 2. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermill.NewStdLogger(false, false),
	)

	// 3. Dataset
	datasetProvider := dataset.NewProvider(cfg.Dataset.Path, cfg.Dataset.URL)
	datasetPath, err := datasetProvider.Ensure(ctx)
	if err != nil {
		// Not fatal: the agent reports the failure per query and retries the download.
		log.Printf("[WARN] Dataset not available yet: %v", err)
		if datasetPath, err = filepath.Abs(cfg.Dataset.Path); err != nil {
			log.Fatalf("[FATAL] Invalid dataset path: %v", err)
		}
	} else {
		log.Printf("[INFO] Using dataset: %s", datasetPath)
	}

	// 4. Python runtime
	pythonPath, err := python.FindInterpreter(cfg.Python.Path)
	if err != nil {
		log.Printf("[WARN] %v: every query will fail until one is installed", err)
	} else {
		log.Printf("[INFO] Using Python interpreter: %s", pythonPath)
	}
	executor := python.NewExecutor(pythonPath, datasetPath, cfg.Python.ExecTimeout, cfg.Python.MaxOutputBytes)

	// 5. LLM Provider. A missing key is a startup failure.
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Params{
		Provider:      cfg.Ai.LLMProvider,
		Model:         cfg.Ai.LLMModel,
		Temperature:   cfg.Ai.Temperature,
		GoogleAPIKey:  cfg.Ai.GoogleAPIKey,
		OpenAIAPIKey:  cfg.Ai.OpenAIAPIKey,
		OpenAIBaseURL: cfg.Ai.OpenAIBaseURL,
		AnthropicKey:  cfg.Ai.AnthropicKey,
		OllamaBaseURL: cfg.Ai.OllamaBaseURL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	model := cfg.Ai.LLMModel
	if model == "" {
		model = factory.DefaultModels[cfg.Ai.LLMProvider]
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, model)

	var closers []io.Closer
	if c, ok := llmProvider.(io.Closer); ok {
		closers = append(closers, c)
	}

	// 6. Agent + Orchestrator
	dataAgent := agent.NewDataFrameAgent(llmProvider, executor, datasetProvider, cfg.Ai.MaxIterations, sysLogger)
	orch := orchestrator.New(dataAgent, orchestrator.Options{
		ArtifactRoot: cfg.Orchestrator.ArtifactRoot,
		PerRequest:   cfg.Orchestrator.ArtifactPerRequest,
		Serialize:    cfg.Orchestrator.Serialize,
	}, sysLogger)

	// 7. Services
	sessionRepo := memory.NewSessionRepository()
	publisherService := service.NewPublisherService(pubSub, cfg.App.EventTopic)
	statsService := service.NewStatsService(sessionRepo)
	consumerService := service.NewConsumerService(pubSub, cfg.App.EventTopic, statsService, auditLogger)
	chatService := service.NewChatService(orch, sessionRepo, datasetProvider, publisherService, sysLogger)

	closers = append(closers, pubSub)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		DatasetController: controller.NewDatasetController(chatService),
		StatsController:   controller.NewStatsController(statsService),

		ConsumerService: consumerService,
		WebSocketHub:    websocket.NewHub(sysLogger),

		ChatService:  chatService,
		Orchestrator: orch,
		Logger:       sysLogger,

		closers: closers,
	}
}

// Close releases the event bus and LLM clients and flushes the logger.
func (c *Container) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Printf("[WARN] close: %v", err)
		}
	}
	_ = c.Logger.Sync()
}
