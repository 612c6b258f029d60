package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/db"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/search"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	gdb, err := db.Open(ctx, cfg.DatabaseURL, logger)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	bucket, err := storage.OpenDir(cfg.UploadDir)
	if err != nil {
		log.Fatalf("uploads: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	r := &repo.GormRepo{DB: gdb}

	catalog := &service.CatalogService{
		Repo:   r,
		Images: storage.NewImageStore(bucket),
		Events: publisher,
	}
	if cfg.ES.URL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		es, err := search.NewClient(ctx, search.Config{URL: cfg.ES.URL, User: cfg.ES.User, Password: cfg.ES.Password}, logger)
		cancel()
		if err != nil {
			logger.Warn("es_unavailable", "reason", "search falls back to database", "error", err)
		} else {
			catalog.Index = search.NewIndex(es, cfg.ES.Index)
		}
	}

	accounts := &service.AccountService{
		Repo: r,
		Notifier: notify.NewMailer(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: "ModaVibe",
			Timeout:  cfg.SMTP.Timeout,
		}),
		Events:        publisher,
		JWTSecret:     []byte(cfg.JWTSecret),
		TokenTTL:      cfg.TokenTTL,
		AllowedDomain: cfg.AllowedEmailDomain,
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := accounts.EnsureAdmin(logging.IntoContext(seedCtx, logger), cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("admin_seed_failed", "error", err)
	}
	seedCancel()

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpserver.NewValidator()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("10M"))

	deps := &httpserver.Deps{
		AccountHandler: &httpserver.AccountHTTP{Svc: accounts},
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: publisher}},
		JWTSecret:      []byte(cfg.JWTSecret),
		UploadDir:      cfg.UploadDir,
		Ready: func() error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.SkipPaths = []string{"/api/login", "/api/register", "/api/verify", "/api/verify/resend"}
		deps.CSRF = &csrfCfg
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka_close_failed", "error", err)
	}
	if err := bucket.Close(); err != nil {
		logger.Error("uploads_close_failed", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("storefront_stopped")
}
