package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendor-portal/infrastructure/cache"
	"vendor-portal/infrastructure/clients/shopify"
	"vendor-portal/infrastructure/configuration"
	"vendor-portal/infrastructure/logger"
	"vendor-portal/infrastructure/persistence"
	"vendor-portal/infrastructure/pubsub"
	"vendor-portal/infrastructure/realtime"
	"vendor-portal/infrastructure/servicebus"
	httpHandler "vendor-portal/interfaces/http"
	"vendor-portal/server"
	"vendor-portal/usecase"

	"golang.org/x/sync/errgroup"
)

var httpServer *http.Server

func recoverPanic() {
	if err := recover(); err != nil {
		logger.GetLogger().WithField("error", err).Error("Application panic recovered")
	}
}

func main() {
	defer recoverPanic()
	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	g, ctx := errgroup.WithContext(ctx)

	// Load env from files (non-destructive; OS env still has precedence)
	configuration.LoadEnvFromFile("config.env", ".env")

	app := configuration.C.App

	psqlDb, err := persistence.NewPostgreSQLDB()
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Database initialization failed")
		os.Exit(1)
	}
	if err := persistence.EnsureSchema(psqlDb); err != nil {
		logger.GetLogger().WithField("error", err).Error("Schema check failed")
		os.Exit(1)
	}

	mongoDb, err := persistence.NewMongoDb(
		configuration.C.Database.Mongo.Host,
		configuration.C.Database.Mongo.Port,
		configuration.C.Database.Mongo.User,
		configuration.C.Database.Mongo.Password,
		configuration.C.Database.Mongo.Name,
	)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("MongoDB not available - continuing without publish audit log")
		mongoDb = nil
	} else {
		if err := mongoDb.Ping(ctx, nil); err != nil {
			logger.GetLogger().WithField("error", err).Warn("MongoDB ping failed - continuing without publish audit log")
			mongoDb = nil
		} else {
			logger.GetLogger().Info("MongoDB connected successfully")
		}
	}

	pubSubClient, err := pubsub.NewPubSub(ctx, configuration.C.Pubsub.ProjectID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("PubSub not available - continuing without publish events")
		pubSubClient = nil
	}

	azServiceBusClient, err := servicebus.NewServiceBus(ctx, configuration.C.ServiceBus.Namespace)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Azure Service Bus not available - continuing without Service Bus mirror")
		azServiceBusClient = nil
	}

	redisClient, _ := cache.NewCache(
		ctx,
		fmt.Sprintf("%s:%s", configuration.C.RedisClient.Host, configuration.C.RedisClient.Port),
		configuration.C.RedisClient.Username,
		configuration.C.RedisClient.Password,
	)

	// Repositories
	userRepository := persistence.NewUserRepository(psqlDb)
	productRepository := persistence.NewProductRepository(psqlDb)
	credentialRepository := persistence.NewCredentialRepository(psqlDb)
	auditRepository := persistence.NewPublishAuditRepository(mongoDb, configuration.C.Database.Mongo.Name)

	// Platform clients
	shopifyCfg := shopify.Config{
		ShopDomain:   configuration.C.Shopify.ShopDomain,
		ClientID:     configuration.C.Shopify.ClientID,
		ClientSecret: configuration.C.Shopify.ClientSecret,
		APIVersion:   configuration.C.Shopify.APIVersion,
	}
	tokenManager := shopify.NewTokenManager(shopifyCfg, credentialRepository)
	executor := shopify.NewExecutor(shopifyCfg, tokenManager)
	uploadClient := shopify.NewStagedUploadClient(shopifyCfg, executor)
	imageProcessor := shopify.NewImageBatchProcessor(uploadClient, configuration.C.Publish.UploadRatePerMinute)
	catalogPublisher := shopify.NewCatalogPublisher(executor)

	// Supporting infrastructure
	statusCache := cache.NewPublishStatusCache(redisClient)
	publishEvents := pubsub.NewPublishEvents(pubSubClient, configuration.C.Pubsub.Topic)
	busEvents := servicebus.NewPublishEvents(azServiceBusClient, configuration.C.ServiceBus.Queue)
	publishHub := realtime.NewPublishHub()

	// Usecases
	userUsecase := usecase.NewUserUsecase(userRepository)
	productUsecase := usecase.NewProductUsecase(productRepository)
	moderationUsecase := usecase.NewModerationUsecase(
		productRepository,
		imageProcessor,
		catalogPublisher,
		auditRepository,
		statusCache,
		publishEvents,
		busEvents,
		publishHub,
		configuration.C.Shopify.ShopDomain,
	)

	// Handlers
	userHandler := httpHandler.NewUserHandler(userUsecase)
	productHandler := httpHandler.NewProductHandler(productUsecase)
	moderationHandler := httpHandler.NewModerationHandler(moderationUsecase, auditRepository)
	storefrontHandler := httpHandler.NewStorefrontHandler(credentialRepository)
	healthHandler := httpHandler.NewHealthHandler(psqlDb)

	router := server.InitiateRouter(
		userHandler,
		productHandler,
		moderationHandler,
		storefrontHandler,
		healthHandler,
		userRepository,
		publishHub,
	)

	// Background sweep: re-attempt the platform push for approved products
	// whose last publish failed.
	retryInterval := time.Duration(configuration.C.Publish.RetryIntervalSeconds) * time.Second
	retryBatch := configuration.C.Publish.RetryBatchSize
	g.Go(func() error {
		ticker := time.NewTicker(retryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				sweepCtx, cancelSweep := context.WithTimeout(ctx, retryInterval)
				moderationUsecase.RetryFailedPublishes(sweepCtx, retryBatch)
				cancelSweep()
			}
		}
	})

	port := app.Port
	logger.GetLogger().WithField("port", port).Info("Starting application")
	g.Go(func() error {
		httpServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		}
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	select {
	case <-interrupt:
		logger.GetLogger().Info("Application shutdown requested")
	case <-ctx.Done():
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if httpServer != nil {
		_ = httpServer.Shutdown(shutdownCtx)
	}
	if mongoDb != nil {
		_ = mongoDb.Disconnect(shutdownCtx)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.GetLogger().WithField("error", err).Error("Server returned an error")
		os.Exit(2)
	}
}
