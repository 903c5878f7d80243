package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"internship_tracker/internal/app"
	"internship_tracker/internal/domain/notification"
	"internship_tracker/internal/infra/config"
	idb "internship_tracker/internal/infra/database"
	"internship_tracker/internal/infra/httpapi"
	"internship_tracker/internal/infra/logger"
	"internship_tracker/internal/infra/memory"
	"internship_tracker/internal/infra/metrics"
	"internship_tracker/internal/infra/ratelimit"
	"internship_tracker/internal/infra/scheduler"
	"internship_tracker/internal/infra/telegram"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const (
	shutdownTimeout    = 10 * time.Second
	maxRateLimiterKeys = 10000
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"http_port":   cfg.HTTPPort,
	}).Info("Internship tracker starting...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// Storage
	var (
		store app.Store
		ping  func(context.Context) error
	)
	if cfg.DatabaseURL != "" {
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to database: %v", err)
		}
		defer db.Close()
		mainLogger.Info("Database connection established successfully.")

		if cfg.RunMigrations {
			if err := idb.ApplyMigrations(ctx, db); err != nil {
				mainLogger.Fatalf("Could not apply migrations: %v", err)
			}
			mainLogger.Info("Database migrations applied.")
		}
		store = idb.NewPostgresStore(db)
		ping = pingDB(db)
	} else {
		mainLogger.Warn("DATABASE_URL is not set, using the in-memory store. Data is lost on restart.")
		store = memory.NewStore()
	}

	// Apply rate limit
	var (
		limiter       app.Limiter
		memoryLimiter *ratelimit.MemoryLimiter
	)
	if cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			mainLogger.Fatalf("Could not connect to redis: %v", err)
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client, cfg.ApplyRateLimitPerMin, time.Minute)
		mainLogger.Info("Using redis rate limiter.")
	} else {
		memoryLimiter = ratelimit.NewMemoryLimiter(cfg.ApplyRateLimitPerMin)
		limiter = memoryLimiter
	}

	// Telegram bot is optional
	var bot *telebot.Bot
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telebot")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Chat() != nil {
					entry = entry.WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler failed")
			},
		})
		if err != nil {
			mainLogger.Fatalf("Could not create Telegram bot: %v", err)
		}
	}

	notifiers := app.MultiNotifier{app.NewStoreNotifier(store.Notifications(), clock)}
	if bot != nil {
		notifiers = append(notifiers, telegram.NewNotifier(telegram.NewTelebotAdapter(bot), store.Users(), logger.Component("telegram_notifier")))
	}
	var notifier notification.Notifier = notifiers

	// Services
	recorder := metrics.Recorder{}
	userService := app.NewUserService(store, clock, logger.Component("user_service"))
	internshipService := app.NewInternshipService(store, clock, logger.Component("internship_service"))
	applicationService := app.NewApplicationService(store, notifier, limiter, recorder, clock, cfg.OfferResponseWindow, logger.Component("application_service"))
	trackingService := app.NewTrackingService(store, notifier, recorder, clock, cfg.OfferResponseWindow, logger.Component("tracking_service"))
	notificationService := app.NewNotificationService(store, clock)
	reminderService := app.NewReminderService(store, notifier, recorder, clock, cfg.InterviewReminderLead, cfg.OfferReminderLead, logger.Component("reminder_service"))
	mainLogger.Info("Services initialized.")

	// Scheduler
	reminderScheduler := scheduler.NewReminderScheduler(reminderService, logger.Component("scheduler"),
		cfg.CronSpecInterviewCheck, cfg.CronSpecOfferCheck)
	if memoryLimiter != nil {
		reminderScheduler.AddHousekeeping("rate_limiter_reset", "@hourly", func() {
			memoryLimiter.Reset(maxRateLimiterKeys)
		})
	}
	if err := reminderScheduler.Start(); err != nil {
		mainLogger.Fatalf("Could not start scheduler: %v", err)
	}

	// HTTP API
	router := httpapi.NewRouter(httpapi.Services{
		Users:         userService,
		Internships:   internshipService,
		Applications:  applicationService,
		Tracking:      trackingService,
		Notifications: notificationService,
		Ping:          ping,
	}, httpapi.NewAuthenticator(cfg.JWTSecret, logger.Component("auth")), logger.Component("http"), cfg.RequestTimeout)
	server := httpapi.NewServer(cfg.HTTPPort, router)

	serverErr := make(chan error, 1)
	go func() {
		mainLogger.Infof("HTTP server listening on :%s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	if bot != nil {
		telegram.NewBotHandlers(userService, applicationService, trackingService, logger.Component("bot")).Register(ctx, bot)
		go bot.Start()
		mainLogger.Info("Telegram bot started.")
	}

	select {
	case <-ctx.Done():
		mainLogger.Info("Shutdown signal received.")
	case err := <-serverErr:
		mainLogger.Errorf("HTTP server failed: %v", err)
	}

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.Errorf("HTTP server shutdown: %v", err)
	}
	if bot != nil {
		bot.Stop()
	}
	reminderScheduler.Stop()
	mainLogger.Info("Application shut down gracefully.")
}

func pingDB(db *sql.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
