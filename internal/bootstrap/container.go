package bootstrap

import (
	"context"
	"log"

	"temple-sessions-be/internal/config"
	"temple-sessions-be/internal/controller"
	"temple-sessions-be/internal/pkg/logger"
	"temple-sessions-be/internal/repository/implementation"
	"temple-sessions-be/internal/repository/memory"
	"temple-sessions-be/internal/service"
	"temple-sessions-be/internal/websocket"
	"temple-sessions-be/pkg/content"
	"temple-sessions-be/pkg/live"
	pktNats "temple-sessions-be/pkg/nats"
	"temple-sessions-be/pkg/realtime"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	PostController      controller.IPostController
	UserStateController controller.IUserStateController

	// Services shared with the transport layer
	SessionService service.ISessionService

	// Live session infrastructure
	SessionStore *live.Store
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config, catalog content.Provider) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Infrastructure
	// NATS metrics sink. Metrics stay nil when the bus is unreachable;
	// every emitter treats it as optional.
	var metrics live.MetricsSink
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		metrics = natsPub
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Realtime session channel + shared store
	channel := realtime.NewGoChannel()
	sessionStore := live.NewStore(channel, sysLogger)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	timings := live.Timings{
		SettleDelay:     cfg.Portal.DisplaySettleDelay,
		FadeDuration:    cfg.Portal.FadeDuration,
		FadeOutDuration: cfg.Portal.FadeOutDuration,
	}
	wsHub := websocket.NewHub(sessionStore, rdb, timings, wsLogger)
	go wsHub.Run()

	// 3. Repositories
	postRepo := implementation.NewPostRepository(db)
	sessionRepo := implementation.NewSessionRepository(db)
	userStates := memory.NewUserStateRepository()

	// 4. Services
	interestService := service.NewInterestService(rdb, sysLogger)
	pinService := service.NewPinService(userStates, interestService, metrics, sysLogger, cfg.Portal.PinnedSessionTTL)
	postService := service.NewPostService(postRepo, metrics, sysLogger)
	sessionService := service.NewSessionService(
		sessionRepo,
		sessionStore,
		catalog,
		interestService,
		pinService,
		metrics,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		SessionController:   controller.NewSessionController(sessionService),
		PostController:      controller.NewPostController(postService),
		UserStateController: controller.NewUserStateController(pinService),
		SessionService:      sessionService,
		SessionStore:        sessionStore,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}
