package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/hyperledger-labs/xrpl-amplifier-relayer/log"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/payload"
	"github.com/hyperledger-labs/xrpl-amplifier-relayer/utils"
)

const (
	PayloadPath = "/payload-from-xrpl"

	DefaultListenAddr   = ":3000"
	DefaultMaxBodyBytes = 1 << 20

	shutdownTimeout = 5 * time.Second
)

type Config struct {
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`
	// RateLimit is the number of accepted requests per second. Zero disables the limiter.
	RateLimit    float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`
	RateBurst    int     `json:"rate_burst,omitempty" yaml:"rate_burst,omitempty"`
	MaxBodyBytes int64   `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:   DefaultListenAddr,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("config attribute \"listen_addr\" is empty")
	}
	if c.RateLimit < 0 {
		return errors.Newf("config attribute \"rate_limit\" is negative: %v", c.RateLimit)
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return errors.New("config attribute \"rate_burst\" must be positive when \"rate_limit\" is set")
	}
	return nil
}

type payloadRequest struct {
	Payload string `json:"payload"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// PayloadServer accepts payloads whose hashes are carried by XRPL payments and registers them in the cache.
type PayloadServer struct {
	config  Config
	cache   payload.Cache
	limiter *rate.Limiter
	handler http.Handler
}

func NewPayloadServer(config Config, cache payload.Cache) *PayloadServer {
	s := &PayloadServer{
		config: config,
		cache:  cache,
	}
	if config.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst)
	}

	r := mux.NewRouter()
	r.HandleFunc(PayloadPath, s.handlePayload).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = respondWith(http.StatusMethodNotAllowed, "Method not allowed")
	r.Use(s.rateLimit)

	s.handler = otelhttp.NewHandler(r, "payload-server")
	return s
}

func (s *PayloadServer) Name() string {
	return "payload-server"
}

func (s *PayloadServer) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is canceled, then shuts the server down gracefully.
func (s *PayloadServer) Run(ctx context.Context) error {
	logger := GetServerLogger()

	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("payload server listening", "addr", s.config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "payload server stopped")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "failed to shut down payload server")
		}
		return ctx.Err()
	}
}

func (s *PayloadServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			writeMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *PayloadServer) handlePayload(w http.ResponseWriter, r *http.Request) {
	logger := GetServerLogger()

	maxBody := s.config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	var req payloadRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		logger.DebugContext(r.Context(), "invalid payload request", "error", err)
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}
	bz, err := utils.DecodeHex(req.Payload)
	if err != nil || len(bz) == 0 {
		logger.DebugContext(r.Context(), "invalid payload hex", "error", err)
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	record, err := s.cache.Put(r.Context(), bz)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to register payload", err)
		writeMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	logger.InfoContext(r.Context(), "payload received", "payload_hash", record.HashHex, "size", len(bz))
	writeMessage(w, http.StatusOK, "Payload received")
}

// notFound answers any non-POST with 405 before looking at the path.
func notFound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	writeMessage(w, http.StatusNotFound, "Not found")
}

func respondWith(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, status, message)
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(messageResponse{Message: message})
}

func GetServerLogger() *log.RelayLogger {
	return log.GetLogger().WithModule("server")
}
