package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/order-bot/internal/bot"
	"github.com/fjod/go_cart/order-bot/internal/config"
	admingrpc "github.com/fjod/go_cart/order-bot/internal/grpc"
	h "github.com/fjod/go_cart/order-bot/internal/http"
	"github.com/fjod/go_cart/order-bot/internal/notify"
	"github.com/fjod/go_cart/order-bot/internal/poller"
	"github.com/fjod/go_cart/order-bot/internal/service"
	"github.com/fjod/go_cart/order-bot/internal/store"
	"github.com/fjod/go_cart/order-bot/internal/telegram"
	"github.com/fjod/go_cart/order-bot/pkg/circuitbreaker"
	"github.com/fjod/go_cart/order-bot/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	storeName       = "Late Nite Lube"
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stdout"})
	defer func() { _ = zl.Sync() }()

	if cfg.MissingSMTPCredentials() {
		zl.Warn("SMTP_USER or SMTP_PASSWORD not set; order emails will fail until they are configured")
	}

	cat, err := cfg.BuildCatalog()
	if err != nil {
		zl.Fatal("invalid catalog", zap.Error(err))
	}

	notifier, closeNotifier, err := buildNotifier(cfg, zl)
	if err != nil {
		zl.Fatal("notification transport setup failed", zap.Error(err))
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.Sender, cfg.Notify.Recipient, zl)

	carts := service.NewCartService(cat, store.NewMemoryCartStore())
	checkout := service.NewCheckoutService(carts, store.NewMemorySessionStore(), dispatcher)
	router := service.NewRouter(cat, carts, checkout, storeName, zl)

	api, err := telegram.Connect(cfg.Telegram.Token, zl)
	if err != nil {
		zl.Fatal("telegram authorization failed", zap.Error(err))
	}
	sender := telegram.NewSender(api, cfg.Telegram.Token, zl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := bot.New(router, sender, cfg.Telegram.Workers, zl)
	b.Start(ctx)

	// Webhook mode mounts the update endpoint next to /health
	var sink h.UpdateSink
	var p *poller.Poller
	switch cfg.Telegram.Mode {
	case config.ModeWebhook:
		if err := telegram.SetWebhook(api, cfg.Telegram.Token, cfg.Telegram.WebhookURL, cfg.Telegram.WebhookSecret); err != nil {
			zl.Fatal("webhook registration failed", zap.Error(err))
		}
		sink = b
	default:
		if err := telegram.SetWebhook(api, cfg.Telegram.Token, "", ""); err != nil {
			zl.Warn("webhook removal failed", zap.Error(err))
		}
		p = poller.NewPoller(api, b, zl)
		go p.Run(ctx)
	}

	srv := h.NewHTTPServer(cfg.HTTP.Port, h.NewServer(sink, cfg.Telegram.WebhookSecret, zl).Routes())
	go func() {
		zl.Info("http server starting", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server error", zap.Error(err))
		}
	}()

	admin := admingrpc.NewAdminServer(zl)
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPC.Port))
	if err != nil {
		zl.Fatal("failed to listen", zap.Error(err))
	}
	go func() {
		if err := admin.Serve(lis); err != nil {
			zl.Error("admin grpc server stopped", zap.Error(err))
		}
	}()
	admin.SetServing(true)
	zl.Info("order bot running", zap.String("mode", cfg.Telegram.Mode), zap.String("transport", cfg.Notify.Transport))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down order bot...")
	admin.SetServing(false)
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if p != nil {
		p.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("http server forced to shutdown", zap.Error(err))
	}
	// in-flight orders finish before the workers that report them stop
	if err := dispatcher.Close(shutdownCtx); err != nil {
		zl.Warn("in-flight notifications abandoned", zap.Error(err))
	}
	if err := b.Stop(shutdownCtx); err != nil {
		zl.Warn("bot workers did not stop in time", zap.Error(err))
	}
	cancel()
	admin.GracefulStop()
	if err := closeNotifier(); err != nil {
		zl.Warn("closing notification transport", zap.Error(err))
	}
	zl.Info("order bot stopped")
}

// buildNotifier selects the configured transport and optionally puts a
// circuit breaker in front of it.
func buildNotifier(cfg *config.Config, zl *zap.Logger) (notify.Notifier, func() error, error) {
	var n notify.Notifier
	closer := func() error { return nil }

	switch cfg.Notify.Transport {
	case "sendgrid":
		n = notify.NewSendGridNotifier(cfg.SendGrid.APIKey, storeName)
	case "kafka":
		k := notify.NewKafkaNotifier(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		n, closer = k, k.Close
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		n, closer = notify.NewRedisNotifier(client, cfg.Redis.Stream), client.Close
	default:
		n = notify.NewSMTPNotifier(notify.SMTPConfig{
			Server:   cfg.SMTP.Server,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
		})
	}

	if cfg.Notify.Breaker {
		n = notify.NewBreakerNotifier(n, circuitbreaker.DefaultConfig("notify-"+cfg.Notify.Transport), zl)
	}
	return n, closer, nil
}
