package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/availability"
	"github.com/joy095/venue/badwords"
	"github.com/joy095/venue/config"
	"github.com/joy095/venue/config/db"
	redisclient "github.com/joy095/venue/config/redis"
	"github.com/joy095/venue/controllers/booking_controller"
	"github.com/joy095/venue/controllers/venue_controller"
	"github.com/joy095/venue/events"
	"github.com/joy095/venue/jobs"
	"github.com/joy095/venue/logger"
	middleware "github.com/joy095/venue/middlewares"
	"github.com/joy095/venue/middlewares/cors"
	logger_middleware "github.com/joy095/venue/middlewares/logger"
	"github.com/joy095/venue/models/booking_models"
	"github.com/joy095/venue/models/venue_models"
	"github.com/joy095/venue/routes"
	"github.com/joy095/venue/utils/mail"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func init() {
	logger.InitLoggers()
	config.LoadEnv()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.ErrorLogger.Fatalf("Invalid configuration: %v", err)
	}

	db.Connect()
	defer db.Close()

	if cfg.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.Migrate(ctx, db.DB)
		cancel()
		if err != nil {
			logger.ErrorLogger.Fatalf("Migration failed: %v", err)
		}
	}

	if cfg.BadWordsFile != "" {
		if err := badwords.LoadBadWords(cfg.BadWordsFile); err != nil {
			logger.WarnLogger.Warnf("Keeping built-in bad words list: %v", err)
		}
	}

	var rdb *redis.Client
	if client, err := redisclient.GetRedisClient(context.Background()); err == nil {
		rdb = client
		defer redisclient.CloseRedis()
	}

	publisher, err := events.Connect(cfg.NatsURL)
	if err != nil {
		logger.WarnLogger.Warnf("Booking events disabled: %v", err)
		publisher = events.NewPublisher(nil)
	}
	defer publisher.Close()

	mailer, err := mail.NewMailer(cfg)
	if err != nil {
		logger.ErrorLogger.Fatalf("Mailer setup failed: %v", err)
	}

	checker := availability.NewChecker(cfg.Location)
	venueStore := venue_models.NewStore(db.DB)
	bookingService := booking_controller.NewBookingService(booking_models.NewStore(db.DB), venueStore, checker)
	bookingService.Notifier = mailer
	bookingService.Events = publisher
	if rdb != nil {
		bookingService.Locker = booking_controller.NewVenueLocker(rdb, cfg.VenueLockTTL)
	}

	scheduler, err := jobs.NewScheduler(cfg.PendingExpirySpec, bookingService)
	if err != nil {
		logger.ErrorLogger.Fatalf("Scheduler setup failed: %v", err)
	}
	scheduler.Start()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.CorsMiddleware())
	r.Use(logger_middleware.GinLogger())

	limits := middleware.NewRateLimiters(rdb)
	bookingController := booking_controller.NewBookingController(bookingService)
	routes.RegisterVenueRoutes(r, venue_controller.NewVenueController(venueStore), bookingController, limits)
	routes.RegisterBookingRoutes(r, bookingController, limits)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok from venue booking service", "timezone": checker.Location().String()})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.InfoLogger.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.ErrorLogger.Fatalf("Server failed to listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("Shutting down venue booking server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.ErrorLogger.Errorf("Server forced to shutdown: %v", err)
	}
	scheduler.Stop(ctx)

	logger.InfoLogger.Info("Server exited gracefully.")
}
