package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/order-bot/internal/telegram"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	WebhookPath        = "/telegram/webhook"
	maxRequestBodySize = 1 << 20 // 1MB
)

// UpdateSink receives updates pushed by Telegram.
type UpdateSink interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Server struct {
	sink   UpdateSink // nil when the bot runs in polling mode
	secret string
	log    *zap.Logger
}

func NewServer(sink UpdateSink, secret string, log *zap.Logger) *Server {
	return &Server{
		sink:   sink,
		secret: secret,
		log:    log.Named("http"),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.sink != nil {
		r.Post(WebhookPath, s.Webhook)
	}

	return otelhttp.NewHandler(r, "order-bot")
}

// Webhook accepts one Telegram update. Anything but a bad secret is
// acknowledged with 200 so Telegram does not redeliver it.
func (s *Server) Webhook(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" {
		got := r.Header.Get(telegram.SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secret)) != 1 {
			respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid secret token"})
			return
		}
	}

	var update tgbotapi.Update
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&update); err != nil {
		s.log.Warn("malformed webhook payload", zap.Error(err))
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	s.sink.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

// NewHTTPServer wraps the handler with the timeouts every listener uses.
func NewHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
