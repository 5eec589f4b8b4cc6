// Package http exposes the GroupMe webhook and the reminder endpoint.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentbot/internal/amqp"
	"rentbot/internal/bot"
	"rentbot/internal/core"
	"rentbot/internal/ledger"
	applog "rentbot/internal/log"
	"rentbot/internal/observability/metrics"
)

// ChargePublisher hands charge-fetch requests to the worker over the queue.
type ChargePublisher interface {
	PublishChargeFetch(ctx context.Context, msg *amqp.ChargeFetchMessage) error
}

// ChargeFetcher fetches and posts charges in-process, used when no queue is
// configured.
type ChargeFetcher interface {
	FetchAndPost(ctx context.Context, key core.MonthKey, announce bool) error
}

// Deps are the collaborators the server needs.
type Deps struct {
	Dispatcher *bot.Dispatcher
	Ledger     *ledger.Service
	Messenger  bot.Messenger
	Publisher  ChargePublisher
	Fetcher    ChargeFetcher
	Landlord   string
	Logger     *applog.Logger
}

type Server struct {
	http.Server
	dispatcher *bot.Dispatcher
	svc        *ledger.Service
	msgr       bot.Messenger
	publisher  ChargePublisher
	fetcher    ChargeFetcher
	landlord   string

	logger      *applog.Logger
	rateLimiter *rateLimiter
	now         func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		dispatcher:  deps.Dispatcher,
		svc:         deps.Ledger,
		msgr:        deps.Messenger,
		publisher:   deps.Publisher,
		fetcher:     deps.Fetcher,
		landlord:    deps.Landlord,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		now:         time.Now,
	}

	metrics.Init()

	mux.HandleFunc("/", s.withMiddleware(s.handleWebhook))
	mux.HandleFunc("/reminder", s.withMiddleware(s.handleReminder))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// webhookPayload is the subset of the GroupMe callback body the bot reads.
type webhookPayload struct {
	Text       string `json:"text"`
	Name       string `json:"name"`
	SenderType string `json:"sender_type"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	defer func() { metrics.ObserveWebhookLatency(time.Since(start)) }()

	var msg webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		s.logger.WarnContext(r.Context(), "Unreadable webhook payload",
			applog.FieldError, err.Error())
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	// The bot sees its own messages come back through the callback.
	if msg.SenderType == "bot" || !bot.IsCommand(msg.Text) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Not a rentbot command"))
		return
	}

	outcome := s.dispatcher.Dispatch(r.Context(), msg.Text, msg.Name)
	metrics.ObserveCommand(string(outcome.Kind), string(outcome.Status))

	switch outcome.Status {
	case bot.StatusUnrecognized:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = fmt.Fprintf(w, "Unrecognized command %q", msg.Text)
	case bot.StatusError:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Parsed message successfully"))
	}
}

// handleReminder posts the monthly rent reminder and kicks off the charge
// fetch in the background.
func (s *Server) handleReminder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	key := core.BillingMonth(s.now())

	if _, err := s.svc.CreateMonth(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create reminder month",
			applog.FieldMonth, key.String(),
			applog.FieldError, err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := s.msgr.Post(ctx, bot.ReminderMessage(s.landlord)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to post reminder", applog.FieldError, err.Error())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	metrics.ObserveReminder()

	s.startChargeFetch(ctx, key)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Reminder message sent"))
}

// startChargeFetch prefers the queue; without one it falls back to an
// in-process fetch so single-binary deployments still work.
func (s *Server) startChargeFetch(ctx context.Context, key core.MonthKey) {
	if s.publisher != nil {
		msg := amqp.NewChargeFetchMessage(key.Year, key.Month, true)
		if err := s.publisher.PublishChargeFetch(ctx, msg); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish charge fetch",
				applog.FieldMonth, key.String(),
				applog.FieldError, err.Error())
		}
		return
	}
	if s.fetcher != nil {
		go func() {
			// Detached from the request; the fetch outlives the response.
			err := s.fetcher.FetchAndPost(context.Background(), key, true)
			metrics.ObserveChargeFetch(err == nil)
			if err != nil {
				s.logger.Error("Background charge fetch failed",
					applog.FieldMonth, key.String(),
					applog.FieldError, err.Error())
			}
		}()
		return
	}
	s.logger.WarnContext(ctx, "No charge fetch path configured, amounts must be set by hand")
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
