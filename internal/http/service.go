package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	agentgraph "github.com/tryluxor/server/internal/agent/graph"
	"github.com/tryluxor/server/internal/catalog"
	"github.com/tryluxor/server/internal/config"
	"github.com/tryluxor/server/internal/http/apierr"
	"github.com/tryluxor/server/internal/http/middleware"
	logx "github.com/tryluxor/server/pkg/logger"
	"github.com/tryluxor/server/pkg/validator"
)

// Service represents the HTTP service.
type Service struct {
	cfg       config.HTTPConfig
	logger    zerolog.Logger
	validator validator.Validator

	chat       agentgraph.Runner
	productSvc catalog.Service
	seed       func() ([]catalog.Product, error)
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTPConfig,
	v validator.Validator,
	chat agentgraph.Runner,
	productSvc catalog.Service,
) *Service {
	return &Service{
		cfg:        cfg,
		logger:     logx.Logger().With().Str("service", "http").Logger(),
		validator:  v,
		chat:       chat,
		productSvc: productSvc,
		seed:       catalog.SeedProducts,
	}
}

// Router returns the fully wired chi router.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)
	s.RegisterHandlers(r)
	return r
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Router())
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second, // agent turns can take several model calls
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatal().Err(err).Msg("http server stopped")
		}
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")

	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(middleware.Logging(s.logger)...)
	r.Use(
		middleware.Recoverer(),
		middleware.Cors(s.cfg.CORSOrigins),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	ch := newChatHandler(s.chat, s.validator)
	ph := newProductHandler(s.productSvc, s.seed)

	r.Get("/", s.handle(s.root))

	r.Route("/chat", func(r chi.Router) {
		r.Post("/", s.handle(ch.StartChat))
		r.Post("/{thread_id}", s.handle(ch.ContinueChat))
		r.Get("/{thread_id}/messages", s.handle(ch.ListMessages))
		r.Delete("/{thread_id}", s.handle(ch.ClearThread))
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", s.handle(ph.ListProducts))
		r.Get("/search", s.handle(ph.SearchProducts))
		r.Get("/{slug}", s.handle(ph.GetProduct))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Post("/products", s.handle(ph.CreateProduct))
		r.Put("/products/{product_id}", s.handle(ph.UpdateProduct))
		r.Delete("/products/{product_id}", s.handle(ph.DeleteProduct))
		r.Post("/seed", s.handle(ph.SeedProducts))
	})

	r.NotFound(s.handle(func(_ *http.Request) (response, error) {
		return response{}, errNotFoundRoute
	}))
	r.MethodNotAllowed(s.handle(func(_ *http.Request) (response, error) {
		return response{}, errMethodNotAllowed
	}))
}

func (s *Service) root(_ *http.Request) (response, error) {
	return ok(map[string]string{"message": "Server is running"}), nil
}

// response is what a handler wants written on success.
type response struct {
	status int
	body   any
}

func ok(body any) response { return response{status: http.StatusOK, body: body} }

type handlerFunc func(r *http.Request) (response, error)

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}
		s.writeJSON(w, r, res.status, res.body)
	}
}

func (s *Service) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("error encoding response")
	}
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logger := hlog.FromRequest(r)
	ev := logger.Info()
	if res.StatusCode >= http.StatusInternalServerError {
		ev = logger.Error()
	} else if res.StatusCode >= http.StatusBadRequest {
		ev = logger.Warn()
	}
	ev.Err(err).Int("status", res.StatusCode).Msg("http response error")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger.Error().Err(err).Msg("error encoding error response")
	}
}
