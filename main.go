package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitchinvest/config"
	"pitchinvest/database"
	"pitchinvest/database/repository"
	"pitchinvest/handlers"
	"pitchinvest/middleware"
	"pitchinvest/routes"
	adminSvc "pitchinvest/services/admin"
	"pitchinvest/services/billing"
	"pitchinvest/services/mailer"
	"pitchinvest/services/registration"
	"pitchinvest/services/storage"
	"pitchinvest/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	storageService, err := storage.NewCloudinaryService(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize storage service: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	userRepo := repository.NewMongoUserRepo()
	profileRepo := repository.NewMongoProfileRepo()
	proposalRepo := repository.NewMongoProposalRepo()
	materialsRepo := repository.NewMongoMaterialsRepo()
	projectRepo := repository.NewMongoProjectRepo()

	// mail delivery.
	mailQueue := mailer.NewMailer(logger)
	defer mailQueue.Close()
	mailer.InitMailWorker(mailer.LogSender{})

	// services.
	otpStore := registration.NewRedisKVStore(utils.GetOTPCacheClient())
	otpManager := registration.NewOTPManager(otpStore, mailQueue, logger)

	pipeline := &registration.Pipeline{
		Users:     userRepo,
		Profiles:  profileRepo,
		Proposals: proposalRepo,
		Materials: materialsRepo,
		Projects:  projectRepo,
		Storage:   storageService,
		Logger:    logger,
	}

	registrationService := &registration.DefaultRegistrationService{
		Sessions: registration.NewRedisSessionStore(utils.GetSessionCacheClient()),
		OTP:      otpManager,
		Guard:    otpStore,
		Pipeline: pipeline,
		Logger:   logger,
	}

	adminService := &adminSvc.DefaultAdminService{
		Users:  userRepo,
		Logger: logger,
	}

	billingService := billing.NewStripeService(userRepo, logger)

	// Assemble the handler bundle and register routes.
	handlerBundle := &routes.HandlerBundle{
		Registration: handlers.NewRegistrationHandler(registrationService),
		Admin:        handlers.NewAdminHandler(adminService),
		Subscription: handlers.NewSubscriptionHandler(billingService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
