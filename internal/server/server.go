package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/ducduc1118-design/recash/internal/api"
	"github.com/ducduc1118-design/recash/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Server is the HTTP front of the RewardsService
type Server struct {
	cfg        models.ServerConfig
	rewards    *api.RewardsService
	tokens     *TokenIssuer
	httpServer *http.Server
}

func New(cfg models.ServerConfig, rewards *api.RewardsService, tokens *TokenIssuer) *Server {
	s := &Server{
		cfg:     cfg,
		rewards: rewards,
		tokens:  tokens,
	}

	handler := s.Routes()
	if cfg.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.tokens.Authenticate)

			r.Get("/me", s.handleMe)
			r.Get("/wallet", s.handleWallet)
			r.Get("/wallet/ledger", s.handleLedger)
			r.Get("/checkin/status", s.handleCheckinStatus)
			r.Post("/checkin/today", s.handleCheckinToday)
			r.Get("/withdrawals", s.handleListWithdrawals)
			r.Post("/withdrawals", s.handleRequestWithdrawal)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireAdmin)

				r.Get("/users", s.handleAdminUsers)
				r.Get("/withdrawals", s.handleAdminWithdrawals)
				r.Patch("/withdrawals/{withdrawalId}", s.handleAdminUpdateWithdrawal)
				r.Post("/entries/{entryId}/settle", s.handleAdminSettleEntry)
			})
		})
	})

	return r
}

// Run serves until Shutdown is called. http.ErrServerClosed is not an error.
func (s *Server) Run() error {
	zap.L().Info("Starting HTTP server",
		zap.String("address", s.cfg.Address),
		zap.Bool("h2c", s.cfg.EnableH2C))

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	zap.L().Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
