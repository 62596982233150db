package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mergington-activities/internal/audit"
	"mergington-activities/internal/common/config"
	apphttp "mergington-activities/internal/common/http"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	listactivities "mergington-activities/internal/handlers/activities/list-activities"
	"mergington-activities/internal/handlers/activities/signup"
	"mergington-activities/internal/handlers/activities/unregister"
	"mergington-activities/internal/notify"
	"mergington-activities/pkg/registry"
)

// Deps are the collaborators the HTTP layer is built from. Registry and Logger
// are required; the rest are optional.
type Deps struct {
	Config        config.ServerConfig
	Registry      *registry.Registry
	Recorder      audit.Recorder
	Notifier      notify.Notifier
	Observability *observability.Observability
	Logger        logger.Logger
	// Ready reports dependency health for /ready. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  logger.Logger
	ready   func(ctx context.Context) error
}

func New(deps Deps) *Server {
	s := &Server{
		cfg:    deps.Config,
		logger: deps.Logger,
		ready:  deps.Ready,
	}

	mux := http.NewServeMux()

	mux.Handle("GET /activities", listactivities.NewHandler(
		listactivities.LoadConfig(), deps.Registry, deps.Observability, deps.Logger,
	))
	mux.Handle("POST /activities/{activity_name}/signup", signup.NewHandler(signup.HandlerOptions{
		Config:        signup.LoadConfig(),
		Roster:        deps.Registry,
		Recorder:      deps.Recorder,
		Notifier:      deps.Notifier,
		Observability: deps.Observability,
		Logger:        deps.Logger,
	}))
	mux.Handle("DELETE /activities/{activity_name}/unregister", unregister.NewHandler(
		unregister.LoadConfig(), deps.Registry, deps.Recorder, deps.Observability, deps.Logger,
	))

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /ready", s.readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusTemporaryRedirect)
	})
	if deps.Config.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(deps.Config.StaticDir))))
	}

	s.handler = s.instrument(mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains in-flight requests within the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeoutDuration(),
		WriteTimeout: s.cfg.WriteTimeoutDuration(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", map[string]interface{}{"address": s.cfg.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeoutDuration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) readiness(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", map[string]interface{}{"error": err})
			_ = apphttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	_ = apphttp.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
