package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/health"
)

// Server — HTTP-сервер публичного API магазина.
type Server struct {
	httpServer *http.Server
	logger     *log.Entry
}

// NewServer собирает роутер и HTTP-сервер.
func NewServer(addr string, handler *Handler, healthHandler *health.Handler) *Server {
	logger := log.WithField("component", "http-server")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/healthz", health.LivenessHandler)
	if healthHandler != nil {
		r.Get("/health", healthHandler.ServeHTTP)
		r.Get("/readyz", healthHandler.ReadinessHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handler.CreateOrder)
			r.Get("/{orderID}", handler.GetOrder)
			r.Post("/{orderID}/status", handler.UpdateOrderStatus)
			r.Get("/{orderID}/returns", handler.ListOrderReturns)
		})
		r.Post("/returns", handler.CreateReturn)
		r.Route("/customers/{customerID}", func(r chi.Router) {
			r.Get("/orders", handler.ListCustomerOrders)
			r.Get("/notifications", handler.ListCustomerNotifications)
		})
		r.Get("/products/{productID}/alerts", handler.ListProductAlerts)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}
}

// Start запускает сервер; блокирует до остановки.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Shutdown корректно останавливает сервер.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Router возвращает собранный handler (нужен тестам с httptest).
func (s *Server) Router() http.Handler {
	return s.httpServer.Handler
}

// requestLogger пишет строку access-лога на каждый запрос.
func requestLogger(logger *log.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.WithFields(log.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("http request")
		})
	}
}
