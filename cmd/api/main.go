package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/recruiter-assistant/internal/config"
	"alfredoptarigan/recruiter-assistant/internal/handlers"
	"alfredoptarigan/recruiter-assistant/internal/logger"
	"alfredoptarigan/recruiter-assistant/internal/models"
	"alfredoptarigan/recruiter-assistant/internal/repositories"
	"alfredoptarigan/recruiter-assistant/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	// Repositories
	candidateRepo := repositories.NewCandidateRepository(
		repositories.NewGormWorksheet(db, cfg.Store.SheetName),
		repositories.CandidateDefaults{
			Position:  cfg.Recruiting.Position,
			Source:    cfg.Recruiting.Source,
			Evaluator: cfg.Recruiting.Evaluator,
		},
		cfg.Store.Timeout,
	)
	if err := candidateRepo.EnsureHeaders(ctx); err != nil {
		log.Fatal("❌ Failed to prepare candidate sheet", zap.Error(err))
	}
	docRepo := repositories.NewDocumentRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	log.Info("✅ Repositories initialized successfully")

	// Services
	storageService := services.NewStorageService(
		cfg.Storage.UploadPath,
		cfg.Storage.CVStoragePath,
		cfg.Storage.CVPublicPrefix,
		cfg.Storage.MaxFileSize,
	)
	if err := storageService.EnsureDirs(); err != nil {
		log.Fatal("❌ Failed to create storage directories", zap.Error(err))
	}

	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, cfg.Gemini.ModelTimeout, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	log.Info("✅ Gemini AI initialized successfully", zap.String("model", cfg.Gemini.Model))

	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
	}
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatal("❌ Failed to initialize Qdrant collection", zap.Error(err))
	}
	log.Info("✅ Qdrant initialized successfully", zap.String("collection", cfg.Qdrant.Collection))

	prompts := services.NewPromptBuilder(cfg.Recruiting.Position)
	knowledge := services.NewKnowledgeBase(
		geminiService,
		qdrantService,
		services.NewTextChunker(),
		prompts,
		cfg.Qdrant.DocType,
		cfg.Qdrant.TopK,
		log,
	)

	intake := services.NewIntakePipeline(services.IntakeDeps{
		Extractor:    services.NewTextExtractor(),
		Storage:      storageService,
		Gemini:       geminiService,
		Prompts:      prompts,
		DocRepo:      docRepo,
		EvalRepo:     evalRepo,
		Requirements: knowledge,
		Position:     cfg.Recruiting.Position,
	}, log)
	registrar := services.NewCandidateRegistrar(candidateRepo, cfg.Recruiting.Evaluator, log)

	tools := services.NewToolExecutor(candidateRepo, intake, registrar, knowledge, log)
	agent := services.NewAgent(geminiService, tools, prompts, cfg.Recruiting.AgentMaxIterations, log)
	log.Info("✅ Agent initialized", zap.Int("tools", agent.ToolCount()))

	gateway := services.NewWahaClient(cfg.Waha.URL, cfg.Waha.Session, cfg.Waha.APIKey, cfg.Waha.Timeout, cfg.Waha.SendInterval, log)
	downloader := services.NewMediaDownloader(
		storageService,
		cfg.Waha.DownloadTimeout,
		cfg.Waha.MediaHostFrom,
		cfg.Waha.MediaHostTo,
		cfg.Waha.APIKey,
		log,
	)

	// Worker
	// Stopped explicitly after the HTTP server has drained.
	worker := services.NewWorker(cfg.Worker.Concurrency, 100, log)
	worker.Start(context.Background())

	router := services.NewConversationRouter(services.RouterDeps{
		Dedup:             services.NewDeduplicationGuard(cfg.Dedup.Capacity, cfg.Dedup.Retain),
		Worker:            worker,
		Gateway:           gateway,
		Downloader:        downloader,
		Storage:           storageService,
		Intake:            intake,
		Registrar:         registrar,
		Agent:             agent,
		HistoryFetchLimit: cfg.Recruiting.HistoryFetchLimit,
		HistoryWindow:     cfg.Recruiting.HistoryWindow,
	}, log)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(router, log)
	messageHandler := handlers.NewMessageHandler(gateway, log)
	agentHandler := handlers.NewAgentHandler(agent, log)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, docRepo, evalRepo, log)
	healthHandler := handlers.NewHealthHandler(gateway)
	log.Info("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "WhatsApp Recruiter Assistant",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", healthHandler.HandleHealth)
	app.Get("/test-agent", agentHandler.HandleTestAgent)
	app.Post("/send-message", messageHandler.HandleSendMessage)
	app.Post("/chatbot/webhook", webhookHandler.HandleWebhook)

	api := app.Group("/api/v1")
	api.Get("/health", healthHandler.HandleDetailedHealth)
	api.Get("/candidates/:phone", candidateHandler.HandleGetCandidate)
	api.Get("/evaluations/:id", candidateHandler.HandleGetEvaluation)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "WhatsApp Recruiter Assistant",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /chatbot/webhook",
				"POST /send-message",
				"GET /test-agent",
				"GET /health",
				"GET /api/v1/health",
				"GET /api/v1/candidates/:phone",
				"GET /api/v1/evaluations/:id",
			},
		})
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Info("🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
		worker.Stop()
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Error interno del servidor"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
		if code == fiber.StatusNotFound {
			message = "Endpoint no encontrado"
		}
	}

	return c.Status(code).JSON(models.StatusResponse{
		Status:  "error",
		Message: message,
	})
}
