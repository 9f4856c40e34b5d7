package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/courts/api/handler"
	"github.com/fastygo/courts/internal/config"
	"github.com/fastygo/courts/internal/infrastructure/broker"
	"github.com/fastygo/courts/internal/infrastructure/monitor"
	"github.com/fastygo/courts/internal/infrastructure/outbox"
	pgInfra "github.com/fastygo/courts/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/courts/internal/infrastructure/redis"
	"github.com/fastygo/courts/internal/middleware"
	"github.com/fastygo/courts/internal/router"
	"github.com/fastygo/courts/internal/services"
	"github.com/fastygo/courts/internal/services/lifecycle"
	"github.com/fastygo/courts/pkg/clock"
	"github.com/fastygo/courts/pkg/httpcontext"
	"github.com/fastygo/courts/pkg/logger"
	"github.com/fastygo/courts/repository/postgres"
	redisRepo "github.com/fastygo/courts/repository/redis"
	authUC "github.com/fastygo/courts/usecase/auth"
	"github.com/fastygo/courts/usecase/availability"
	catalogUC "github.com/fastygo/courts/usecase/catalog"
	customerUC "github.com/fastygo/courts/usecase/customer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
		Service:     cfg.AppName,
		Environment: cfg.Environment,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	if cfg.JWT.Secret == "" {
		zapLogger.Fatal("JWT_SECRET must be set")
	}

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Listen(context.Background())
	defer cancel()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.RegisterCloser("redis", redisClient)

	probes := []monitor.Probe{
		{Name: "postgresql", Required: true, Check: pgInfra.Ping(pool)},
		{Name: "redis", Required: true, Timeout: 2 * time.Second, Check: redisInfra.Ping(redisClient)},
	}

	reservationRepo := postgres.NewReservationRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	purchaseRepo := postgres.NewPurchaseRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.TTL)

	venue := clock.NewVenue(cfg.Schedule.Timezone)
	engineOpts := []availability.Option{availability.WithLogger(zapLogger.Named("availability"))}
	if cfg.Cache.Enabled {
		engineOpts = append(engineOpts, availability.WithCache(redisRepo.NewGridCache(redisClient, cfg.Cache.GridTTL)))
	}

	var (
		outboxStore *outbox.Store
		publisher   *broker.Publisher
	)
	if cfg.Events.Enabled {
		outboxStore, err = outbox.Open(cfg.Events.OutboxPath, "")
		if err != nil {
			zapLogger.Fatal("failed to open outbox", zap.Error(err))
		}
		manager.RegisterCloser("outbox", outboxStore)
		engineOpts = append(engineOpts, availability.WithEvents(services.NewOutboxSink(outboxStore)))

		// The monitor probe dials the broker; events wait in the outbox until it answers.
		publisher = broker.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange, zapLogger.Named("broker"))
		manager.RegisterCloser("rabbitmq", publisher)
		probes = append(probes, monitor.Probe{Name: "rabbitmq", Timeout: 10 * time.Second, Check: publisher.Ping})
	}

	mon := monitor.New(10*time.Second, zapLogger.Named("monitor"), probes...)
	if outboxStore != nil {
		mon.WithBacklog(outboxStore)
	}
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	if outboxStore != nil {
		relay, err := services.NewOutboxRelay(outboxStore, publisher, mon.Component("rabbitmq"), zapLogger, services.RelayConfig{
			Interval:   cfg.Events.RelayInterval,
			BatchSize:  cfg.Events.BatchSize,
			MaxRetries: cfg.Events.MaxRetries,
			Retention:  cfg.Events.Retention,
		})
		if err != nil {
			zapLogger.Fatal("failed to schedule outbox relay", zap.Error(err))
		}
		relay.Start()
		manager.Register("outbox_relay", relay.Stop)
	}

	engine := availability.New(reservationRepo, venue, availability.Config{
		Slots:          cfg.Schedule.Slots,
		Resources:      cfg.Schedule.Courts,
		LabelMaxLength: cfg.Schedule.LabelMaxLength,
		StorageTimeout: cfg.Schedule.StorageTimeout,
	}, engineOpts...)

	authUseCase := authUC.New(sessionRepo, authUC.Config{
		Username:     cfg.Admin.User,
		PasswordHash: cfg.Admin.PasswordHash,
		Secret:       cfg.JWT.Secret,
		Issuer:       cfg.JWT.Issuer,
		TTL:          cfg.JWT.TTL,
	}, zapLogger.Named("auth"))
	customerUseCase := customerUC.New(customerRepo, zapLogger)
	catalogUseCase := catalogUC.New(productRepo, purchaseRepo, customerRepo, venue, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:        apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Reservation: apiHandler.NewReservationHandler(engine, ctxAdapter, zapLogger),
		Schedule:    apiHandler.NewScheduleHandler(engine, venue, cfg.Schedule.Timezone, ctxAdapter, zapLogger),
		Customer:    apiHandler.NewCustomerHandler(customerUseCase, ctxAdapter, zapLogger),
		Catalog:     apiHandler.NewCatalogHandler(catalogUseCase, ctxAdapter, zapLogger),
		Health:      apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware, zapLogger)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.Strings("courts", cfg.Schedule.Courts),
			zap.Int("slots", len(cfg.Schedule.Slots)))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server crashed", zap.Error(err))
			cancel()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
