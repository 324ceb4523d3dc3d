// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"lumen-service/internal/catalog"
	"lumen-service/internal/config"
	"lumen-service/internal/db"
	aiHandler "lumen-service/internal/handlers/ai"
	authHandler "lumen-service/internal/handlers/auth"
	notifyHandler "lumen-service/internal/handlers/notification"
	offerHandler "lumen-service/internal/handlers/offer"
	paymentHandler "lumen-service/internal/handlers/payment"
	planHandler "lumen-service/internal/handlers/plan"
	subscriptionHandler "lumen-service/internal/handlers/subscription"
	usageHandler "lumen-service/internal/handlers/usage"
	wsHandler "lumen-service/internal/handlers/websocket"
	"lumen-service/internal/middleware"
	"lumen-service/internal/pkg/jwt"
	"lumen-service/internal/pkg/session"
	"lumen-service/internal/repository/postgres"
	aiService "lumen-service/internal/service/ai"
	authService "lumen-service/internal/service/auth"
	notifyService "lumen-service/internal/service/notification"
	offerService "lumen-service/internal/service/offer"
	paymentService "lumen-service/internal/service/payment"
	subscriptionService "lumen-service/internal/service/subscription"
	usageService "lumen-service/internal/service/usage"
	"lumen-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	return &Server{
		cfg:    config.Load(),
		engine: gin.New(),
	}
}

func (s *Server) Start(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pool.Close()

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()

	// ----- JWT & Sessions -----
	jwtManager, err := jwt.LoadAndBuild(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to load JWT manager: %w", err)
	}
	sessionManager := session.NewManager(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	usageRepo := postgres.NewUsageRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	// ----- Plan catalog -----
	plans := catalog.Default()

	// ----- WebSocket hub -----
	hub := websocket.NewHub(jwtManager, sessionManager, logger)
	go hub.Run(ctx)

	// ----- Services -----
	notifSvc := notifyService.NewService(notificationRepo, hub, logger)
	subscriptionSvc := subscriptionService.NewService(
		dbWrapper,
		subscriptionRepo,
		paymentRepo,
		userRepo,
		plans,
		notifSvc,
		logger,
	)
	authSvc := authService.NewService(userRepo, jwtManager, sessionManager, subscriptionSvc, logger)
	paymentSvc := paymentService.NewService(paymentRepo)
	usageSvc := usageService.NewService(dbWrapper, usageRepo, userRepo, subscriptionRepo, logger)
	offerSvc := offerService.NewService(dbWrapper, offerRepo, plans, logger)
	aiClient := aiService.NewClient(aiService.ClientConfig{
		BaseURL: s.cfg.AIProviderURL,
		APIKey:  s.cfg.AIAPIKey,
		Model:   s.cfg.AIModel,
		Timeout: s.cfg.AITimeout,
	})
	aiSvc := aiService.NewService(aiClient, userRepo, plans, redisClient, logger)

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:         authHandler.NewAuthHandler(authSvc),
		PlanHandler:         planHandler.NewPlanHandler(plans),
		SubscriptionHandler: subscriptionHandler.NewSubscriptionHandler(subscriptionSvc),
		PaymentHandler:      paymentHandler.NewPaymentHandler(paymentSvc),
		UsageHandler:        usageHandler.NewUsageHandler(usageSvc),
		OfferHandler:        offerHandler.NewOfferHandler(offerSvc),
		AIHandler:           aiHandler.NewAIHandler(aiSvc),
		NotifHandler:        notifyHandler.NewNotificationHandler(notifSvc),
		WSHandler:           wsHandler.NewWebSocketHandler(hub, s.cfg.WSAllowedOrigins, logger),
		AuthMiddleware:      middleware.NewAuthMiddleware(jwtManager, sessionManager),
	}

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	SetupRouter(s.engine, handlers)

	listener, err := net.Listen("tcp", s.cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.HTTPAddr, err)
	}

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return serveHTTP(ctx, &http.Server{Handler: s.engine}, listener, logger)
}

const shutdownTimeout = 10 * time.Second

// serveHTTP serves until the listener fails or ctx is cancelled, then
// drains in-flight requests before returning.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down cleanly: %w", err)
		}
		return nil
	}
}
