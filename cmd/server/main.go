package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/api/handlers"
	"github.com/scribely/content-api/internal/api/middleware"
	"github.com/scribely/content-api/internal/cache"
	job "github.com/scribely/content-api/internal/jobs"
	"github.com/scribely/content-api/internal/platform"
	"github.com/scribely/content-api/internal/queue"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	settingsCache := cache.New(cfg.RedisURI)
	defer settingsCache.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	creditRepo := repository.NewCreditRepository(db)
	contentRepo := repository.NewContentRepository(db)
	postRepo := repository.NewPostRepository(db)
	targetRepo := repository.NewTargetRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	publishLogRepo := repository.NewPublishLogRepository(db)
	usageLogRepo := repository.NewUsageLogRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	registry := platform.NewRegistry(
		platform.NewWordPressAdapter(nil),
		platform.NewFacebookAdapter(nil, ""),
		platform.NewInstagramAdapter(nil, ""),
		platform.NewLinkedinAdapter(nil, ""),
		platform.NewTwitterAdapter(nil, ""),
	)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	settingsService := service.NewSettingsService(settingsRepo, settingsCache)
	creditService := service.NewCreditService(creditRepo)
	generationService := service.NewGenerationService(settingsService)
	contentService := service.NewContentService(contentRepo, usageLogRepo, creditService, generationService, settingsService)
	publishService := service.NewPublishService(*cfg, registry, connectionRepo, contentRepo, publishLogRepo, postRepo)
	scheduleService := service.NewScheduleService(db, postRepo, targetRepo, connectionRepo, contentRepo)
	connectionService := service.NewConnectionService(*cfg, connectionRepo)
	r2Service := service.NewR2Service(*cfg)
	mediaService := service.NewMediaService(mediaAssetRepo, r2Service)
	billingService := service.NewBillingService(*cfg, userRepo, creditService)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService, userService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	connection := handlers.NewConnectionHandler(*cfg, connectionService)
	app.Get("/auth/:platform", connection.AddConnection)
	app.Get("/auth/:platform/callback", connection.CallbackHandler)

	billing := handlers.NewBillingHandler(*cfg, billingService)
	app.Post("/webhooks/billing", billing.PaymentWebhook)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	content := handlers.NewContentHandler(contentService)
	api.Post("/content/generate", content.Generate)
	api.Get("/content", content.ListContent)
	api.Post("/content/publish", content.PublishContent)
	api.Post("/content/remove", content.RemoveContent)

	credits := handlers.NewCreditsHandler(creditService)
	api.Get("/credits/balance", credits.GetBalance)
	api.Get("/credits/history", credits.GetHistory)

	publish := handlers.NewPublishHandler(publishService)
	api.Post("/publish/now", publish.PublishNow)
	api.Get("/publish/test", publish.TestConnection)
	api.Get("/publish/history", publish.History)

	post := handlers.NewScheduleHandler(scheduleService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/update", post.UpdatePost)
	api.Post("/posts/cancel", post.CancelPost)
	api.Post("/posts/remove", post.RemovePost)

	api.Post("/connections/manual", connection.ConnectManual)
	api.Get("/connections", connection.ListConnections)
	api.Post("/connections/remove", connection.DeleteConnection)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.Upload)
	api.Get("/media", media.ListMedia)
	api.Post("/media/remove", media.RemoveMedia)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	settings := handlers.NewSettingsHandler(settingsService)
	admin := api.Group("/settings")
	admin.Use(authMiddleware.RequireAdmin())
	admin.Get("/", settings.GetSettings)
	admin.Post("/update", settings.UpdateSettings)

	//queue
	queueW := queue.NewQueue(postRepo, targetRepo, publishService)

	// cron jobs
	duePostsJob := job.NewDuePostsJob(postRepo, client)

	c := cron.New()
	c.AddFunc("@every 00h01m00s", duePostsJob.SweepDuePosts)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
