package main

import (
	"context"
	"log"
	"time"

	"github.com/hilthontt/oekaki/internal/application/game"
	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/configs"
	"github.com/hilthontt/oekaki/internal/infrastructure/events"
	"github.com/hilthontt/oekaki/internal/infrastructure/llm"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/messaging"
	"github.com/hilthontt/oekaki/internal/infrastructure/metrics"
	"github.com/hilthontt/oekaki/internal/infrastructure/profanity"
	"github.com/hilthontt/oekaki/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/oekaki/internal/infrastructure/tracing"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
	"github.com/hilthontt/oekaki/internal/persistence/db"
	"github.com/hilthontt/oekaki/internal/persistence/repository"
	"github.com/hilthontt/oekaki/internal/presentation/api"
	gameHandler "github.com/hilthontt/oekaki/internal/presentation/handler/game"
	healthHandler "github.com/hilthontt/oekaki/internal/presentation/handler/health"
	promptHandler "github.com/hilthontt/oekaki/internal/presentation/handler/prompt"
	"github.com/joho/godotenv"
)

const (
	serviceName = "oekaki-server"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
		Logger:   cfg.Logger.Logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracer, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName: serviceName,
		Environment: cfg.Tracing.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		Enabled:     cfg.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(logging.General, logging.Startup, "failed to initialize the tracer", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer shutdownTracer(context.Background())

	m := metrics.New()
	roomRepository := repository.NewRoomRepository(cfg.RoomStore.Capacity, cfg.RoomStore.IdleExpiry)

	provider, err := llm.NewProvider(llm.Config{
		Provider:       cfg.LLM.Provider,
		Model:          cfg.LLM.Model,
		OpenAIEndpoint: cfg.LLM.OpenAIEndpoint,
		GeminiBaseURL:  cfg.LLM.GeminiBaseURL,
		OpenAIAPIKey:   cfg.LLM.OpenAIAPIKey,
		GeminiAPIKey:   cfg.LLM.GeminiAPIKey,
		RequestTimeout: cfg.LLM.RequestTimeout,
	}, nil)
	if err != nil {
		logger.Fatal(logging.Judge, logging.Startup, "failed to create llm provider", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	judge := llm.NewClient(provider, cfg.Game.JudgeTimeout, logger, m)

	promptTemplate, err := llm.LoadTemplate(cfg.LLM.PromptTemplatePath)
	if err != nil {
		logger.Fatal(logging.IO, logging.Startup, "failed to read prompt template", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	publisher, closeEvents := setupEvents(ctx, cfg, logger)
	defer closeEvents()

	limiter, closeLimiter := setupRateLimiter(ctx, cfg, logger)
	defer closeLimiter()

	relay := game.NewRelay(
		roomRepository,
		judge,
		publisher,
		profanity.NewProfanityFilter(),
		logger,
		m,
		game.Options{
			MaxNameLength:      cfg.Game.MaxNameLength,
			MaxRoomIDLength:    cfg.Game.MaxRoomIDLength,
			RequireDrawingDone: cfg.Game.RequireDrawingDone,
			JudgeTimeout:       cfg.Game.JudgeTimeout,
			EventsPerSecond:    cfg.Websocket.EventsPerSecond,
			EventBurst:         cfg.Websocket.EventBurst,
		},
	)
	go relay.RunJanitor(ctx, cfg.RoomStore.SweepInterval)

	app := api.NewApplication(
		cfg,
		gameHandler.NewHandler(relay, gameHandler.Options{
			Client: ws.Options{
				MaxMessageBytes: cfg.Websocket.MaxMessageBytes,
				SendBuffer:      cfg.Websocket.SendBuffer,
				PingInterval:    cfg.Websocket.PingInterval,
				PongWait:        cfg.Websocket.PongWait,
				WriteWait:       cfg.Websocket.WriteWait,
			},
			AllowedOrigins: cfg.HTTP.AllowedOrigins,
			StrictOrigin:   cfg.Websocket.CheckOriginStrict,
		}, logger),
		promptHandler.NewHandler(judge, promptTemplate, logger),
		healthHandler.NewHandler(roomRepository),
		logger,
		limiter,
		m,
	)

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Error(logging.General, logging.Shutdown, "server stopped with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}

	cancel()
	drainCtx, drainCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer drainCancel()
	if err := relay.Shutdown(drainCtx); err != nil {
		logger.Warn(logging.Game, logging.Shutdown, "judgment tasks still running at exit", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}

// setupEvents connects the broker and, when auditing is on, the consumer
// that writes room events to Mongo.
func setupEvents(ctx context.Context, cfg *configs.Config, logger logging.Logger) (domain.RoomEventPublisher, func()) {
	if !cfg.Events.Enabled {
		return events.NewNoopRoomPublisher(), func() {}
	}

	rabbitmq, err := messaging.NewRabbitMQ(ctx, cfg.Events.URI, cfg.Events.Exchange)
	if err != nil {
		logger.Fatal(logging.RabbitMQ, logging.Startup, "failed to connect to rabbitmq", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	logger.Info(logging.RabbitMQ, logging.Startup, "connected to rabbitmq", nil)

	closers := []func(){rabbitmq.Close}

	if cfg.Audit.Enabled {
		mongoCfg := &db.MongoConfig{URI: cfg.Audit.URI, Database: cfg.Audit.Database}
		client, err := db.NewMongoClient(ctx, mongoCfg)
		if err != nil {
			logger.Fatal(logging.MongoDB, logging.Startup, "failed to connect to mongodb", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}
		closers = append(closers, func() { _ = db.DisconnectMongo(context.Background(), client) })

		auditRepository := repository.NewRoomAuditLogRepository(db.GetDatabase(client, mongoCfg))
		if err := auditRepository.EnsureIndexes(ctx); err != nil {
			logger.Warn(logging.MongoDB, logging.Startup, "failed to create audit log indexes", map[logging.ExtraKey]any{
				logging.ErrorMessage: err.Error(),
			})
		}

		consumer := events.NewRoomConsumer(rabbitmq, auditRepository, logger)
		go func() {
			if err := consumer.Listen(ctx); err != nil && ctx.Err() == nil {
				logger.Error(logging.RabbitMQ, logging.Consume, "room consumer stopped", map[logging.ExtraKey]any{
					logging.ErrorMessage: err.Error(),
				})
			}
		}()
	}

	return events.NewRoomPublisher(rabbitmq), func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

func setupRateLimiter(ctx context.Context, cfg *configs.Config, logger logging.Logger) (ratelimiter.Limiter, func()) {
	opts := ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	}

	if cfg.RateLimiter.Backend != "redis" {
		return ratelimiter.New(opts), func() {}
	}

	cache, err := ratelimiter.NewRedis(ctx, ratelimiter.RedisOptions{
		Addr:      cfg.Redis.Addr,
		Password:  cfg.Redis.Password,
		DB:        cfg.Redis.DB,
		KeyPrefix: "oekaki:",
	})
	if err != nil {
		logger.Fatal(logging.Redis, logging.Startup, "failed to connect to redis", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	opts.Cache = cache

	return ratelimiter.New(opts), func() { _ = cache.Close() }
}
