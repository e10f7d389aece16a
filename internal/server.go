package internal

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/stacksketch/backend/internal/actorctx"
	"github.com/stacksketch/backend/internal/config"
	"github.com/stacksketch/backend/internal/sharing"
	"github.com/stacksketch/backend/internal/store"
	"github.com/stacksketch/backend/pkg/cerr"
	"github.com/stacksketch/backend/pkg/clog"
	"github.com/stacksketch/backend/pkg/panicerr"
)

type Server struct {
	server        *http.Server
	env           *config.Env
	store         *store.Store
	sharingServer *sharing.Server
}

func NewServer(env *config.Env, st *store.Store, sharingServer *sharing.Server) *Server {
	return &Server{
		env:           env,
		store:         st,
		sharingServer: sharingServer,
	}
}

// Handler builds the full HTTP handler: the /api router with logging,
// error rendering, panic recovery and actor extraction, plus /health,
// wrapped in CORS and the API key gate.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
			recoverMiddleware,
			actorctx.Middleware(),
		)
		s.sharingServer.Routes(r)
		r.Get("/users/me", s.handleMe)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
	})

	mux := http.NewServeMux()
	mux.Handle("/health", &HealthChecker{})
	mux.Handle("/api/", r)

	return h2c.NewHandler(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.apiKeyMiddleware(mux)), &http2.Server{})
}

// ListenAndServe starts the HTTP server. The provided context is used as
// the base context for all incoming requests via http.Server.BaseContext.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorctx.ActorFrom(ctx)
	err := s.store.View(func(st *store.State) error {
		u, ok := st.UserByEmail(actor)
		if !ok {
			return cerr.NewError(cerr.NotFound, "user not found", nil)
		}
		cerr.SetJSONResponse(ctx, u)
		return nil
	})
	if err != nil {
		cerr.SetJSONError(ctx, err)
	}
}

type HealthChecker struct{}

func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := panicerr.Safe(func() error {
			next.ServeHTTP(w, r)
			return nil
		})(); err != nil {
			cerr.SetNewJSONError(r.Context(), cerr.Internal, "server error", err)
		}
	})
}

func (s *Server) apiKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The health endpoint stays reachable for probes.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			apiKey = r.Header.Get("Authorization")
			if len(apiKey) > 7 && apiKey[:7] == "Bearer " {
				apiKey = apiKey[7:]
			}
		}
		if apiKey != s.env.APIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
