package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/terraincognita07/gardenweeks/internal/api"
	"github.com/terraincognita07/gardenweeks/internal/config"
	"github.com/terraincognita07/gardenweeks/internal/db"
	"github.com/terraincognita07/gardenweeks/internal/metrics"
	"github.com/terraincognita07/gardenweeks/internal/services"
	"github.com/terraincognita07/gardenweeks/internal/sessions"
	"github.com/terraincognita07/gardenweeks/internal/store"
	"gorm.io/gorm"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := config.ConfigureLogging(cfg.Logging); err != nil {
		return err
	}
	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return errors.Wrap(err, "load timezone")
	}
	time.Local = location

	bookingStore, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer closeStore()

	revoker, closeRevoker, err := openRevoker(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeRevoker()

	authService := services.NewAuthService(bookingStore)
	if admin, created, err := authService.EnsureAdmin(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		return errors.Wrap(err, "bootstrap admin")
	} else if created {
		log.WithField("username", admin.Username).Info("bootstrap admin created")
	}

	app, err := newServer(cfg, bookingStore, authService, revoker)
	if err != nil {
		return err
	}

	sigCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"port":  cfg.Server.Port,
		"store": cfg.Storage.Backend,
		"tz":    location.String(),
	}).Info("gardenweeks listening")
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		return errors.Wrap(err, "server exited")
	}
	return nil
}

func newServer(cfg config.Config, bookingStore store.Store, authService *services.AuthService, revoker sessions.Revoker) (*fiber.App, error) {
	handler, err := api.NewHandler(services.NewBookingService(bookingStore), authService, api.Options{
		SecretKey:    cfg.Auth.SecretKey,
		CookieSecure: cfg.Server.CookieSecure,
		SessionTTL:   cfg.Server.SessionTTL,
		Revoker:      revoker,
		Metrics:      metrics.New(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "handler init failed")
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gardenweeks",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{Output: log.StandardLogger().Writer()}))
	app.Use(compress.New())
	app.Use(csrf.New(csrfMiddlewareConfig(cfg.Server.CookieSecure)))

	api.RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, nil
}

// csrfMiddlewareConfig uses the double-submit pattern: clients copy the
// csrf cookie into the X-CSRF-Token header on unsafe requests.
func csrfMiddlewareConfig(cookieSecure bool) csrf.Config {
	return csrf.Config{
		KeyLookup:      "header:X-CSRF-Token",
		CookieName:     "gardenweeks_csrf",
		CookieSameSite: "Lax",
		CookieHTTPOnly: false,
		CookieSecure:   cookieSecure,
		ContextKey:     "csrf",
	}
}

func openStore(conf config.StorageConf) (store.Store, func(), error) {
	if conf.Backend == config.StoreMemory {
		log.Warn("using in-memory store; bookings are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}

	database, err := db.Open(db.Options{
		Driver: db.Driver(conf.Driver),
		Path:   conf.Path,
		DSN:    conf.DSN,
		Debug:  conf.Debug,
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "database init failed")
	}
	return db.NewBookingStore(database, nil), func() { closeDatabase(database) }, nil
}

func closeDatabase(database *gorm.DB) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.WithError(err).Warn("close database")
	}
}

func openRevoker(ctx context.Context, conf config.RedisConf) (sessions.Revoker, func(), error) {
	if conf.Addr == "" {
		return sessions.NewMemoryRevoker(), func() {}, nil
	}

	client, err := sessions.NewRedisClient(ctx, conf.Addr, conf.Password)
	if err != nil {
		return nil, nil, err
	}
	return sessions.NewRedisRevoker(client), func() { _ = client.Close() }, nil
}
