package rest

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/unrolled/render"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const shutdownTimeout = 10 * time.Second

//go:embed templates/*.tmpl
var templatesFS embed.FS

type gameUseCase interface {
	GetOrCreateGame(ctx context.Context, id string) (*entity.Game, error)
	MakeTurn(ctx context.Context, id string, cell int) (*entity.Game, error)
	ResetGame(ctx context.Context, id string) (*entity.Game, error)
	SelectMode(ctx context.Context, id, mode string) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
	Stats(ctx context.Context) (*entity.Stats, error)
}

type socketHub interface {
	Serve(w http.ResponseWriter, r *http.Request, game *entity.Game)
}

type Server struct {
	logger     *zap.SugaredLogger
	games      gameUseCase
	hub        socketHub
	metrics    http.Handler
	renderer   *render.Render
	fragments  *render.Render
	sessionTTL time.Duration
	model      string
}

// New builds the HTTP surface. model is only shown on the page.
func New(
	logger *zap.SugaredLogger,
	games gameUseCase,
	hub socketHub,
	metrics http.Handler,
	sessionTTL time.Duration,
	model string,
) *Server {
	return &Server{
		logger:  logger.With("component", "rest"),
		games:   games,
		hub:     hub,
		metrics: metrics,
		renderer:   newRenderer("layout"),
		fragments:  newRenderer(""),
		sessionTTL: sessionTTL,
		model:      model,
	}
}

// newRenderer loads the embedded templates. An empty layout renders templates bare.
func newRenderer(layout string) *render.Render {
	return render.New(render.Options{
		Charset:    "UTF-8",
		Directory:  "templates",
		FileSystem: &render.EmbedFileSystem{FS: templatesFS},
		Extensions: []string{".tmpl"},
		IndentJSON: false,
		Layout:     layout,
		Funcs:      []template.FuncMap{},
	})
}

func (that *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(that.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(secure.New(secure.Options{
		BrowserXssFilter:   true,
		ContentTypeNosniff: true,
		FrameDeny:          true,
		HostsProxyHeaders:  []string{"X-Forwarded-Host"},
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	}).Handler)

	r.Get("/ping", NewPingHandler().PingHandler)
	if that.metrics != nil {
		r.Handle("/metrics", that.metrics)
	}

	r.Get("/", that.indexPage)
	r.Get("/board", that.boardFragment)
	r.Post("/play/{cell}", that.playForm)
	r.Post("/reset", that.resetForm)
	r.Post("/mode/{mode}", that.modeForm)
	r.Get("/ws", that.socket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/game", that.getGame)
		r.Delete("/game", that.deleteGame)
		r.Post("/game/turn", that.makeTurn)
		r.Post("/game/reset", that.resetGame)
		r.Post("/game/mode", that.selectMode)
		r.Get("/stats", that.stats)
	})

	return r
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	return nil
}

func (that *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			that.logger.Debugw("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
