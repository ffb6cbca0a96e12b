package webd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"
	"github.com/rotblauer/densitymap/app"
	"github.com/rotblauer/densitymap/params"
)

var ErrNotStarted = errors.New("web daemon not started")

// SocketPath is where pages open their websocket.
const SocketPath = "/socket"

type WebDaemon struct {
	Config         *params.WebDaemonConfig
	Map            *app.Map
	logger         *slog.Logger
	started        time.Time
	melodyInstance *melody.Melody
	metrics        *webMetrics

	// documents holds rendered SVG documents, one per viewport.
	documents *lru.Cache[params.Viewport, *document]

	// sessions holds view sessions of REST clients, keyed by session id.
	sessions *ttlcache.Cache[string, *app.Session]

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	errc     chan error
}

func NewWebDaemon(config *params.WebDaemonConfig, m *app.Map) (*WebDaemon, error) {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	if m == nil {
		return nil, errors.New("nil map")
	}
	size := config.SVGCacheSize
	if size <= 0 {
		size = 1
	}
	documents, err := lru.New[params.Viewport, *document](size)
	if err != nil {
		return nil, err
	}
	s := &WebDaemon{
		Config:    config,
		Map:       m,
		logger:    slog.With("d", "web"),
		started:   time.Now(),
		documents: documents,
		metrics:   newWebMetrics(),
		sessions: ttlcache.New[string, *app.Session](
			ttlcache.WithTTL[string, *app.Session](config.SessionTTL),
		),
	}
	s.sessions.OnEviction(func(ctx context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *app.Session]) {
		if reason == ttlcache.EvictionReasonExpired {
			s.logger.Debug("View session expired", "session", item.Key())
		}
	})
	s.initMelody()
	return s, nil
}

// Start listens on the configured address and serves in the background.
func (s *WebDaemon) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("web daemon already started on %s", s.listener.Addr())
	}
	listener, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	s.listener = listener
	s.server = server
	s.errc = errc
	go s.sessions.Start()

	s.logger.Info("Starting web daemon", "network", s.Config.Network, "address", listener.Addr().String(),
		"features", s.Map.Collection().Len())
	go func() {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()
	return nil
}

// Addr is the address the daemon is listening on.
func (s *WebDaemon) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Wait blocks until the server stops and returns its error.
func (s *WebDaemon) Wait() error {
	s.mu.Lock()
	errc := s.errc
	s.mu.Unlock()
	if errc == nil {
		return ErrNotStarted
	}
	return <-errc
}

// Run starts the HTTP server and waits for it, returning any server error.
func (s *WebDaemon) Run() error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.Wait()
}

// Stop closes every websocket and shuts the server down gracefully.
func (s *WebDaemon) Stop() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.mu.Unlock()
	if server == nil {
		return ErrNotStarted
	}
	s.logger.Info("Stopping web daemon")
	if err := s.melodyInstance.Close(); err != nil {
		s.logger.Warn("Failed to close websockets", "error", err)
	}
	s.sessions.Stop()
	s.metrics.stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Handler is the complete HTTP surface: the websocket and the router.
func (s *WebDaemon) Handler() http.Handler {
	root := http.NewServeMux()
	root.HandleFunc(SocketPath, func(w http.ResponseWriter, r *http.Request) {
		if err := s.melodyInstance.HandleRequest(w, r); err != nil {
			s.logger.Warn("Failed to upgrade websocket", "error", err)
		}
	})
	root.Handle("/", s.NewRouter())
	return root
}

func (s *WebDaemon) NewRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	router.Path("/").HandlerFunc(s.handleIndex).Methods(http.MethodGet)
	router.Path("/map.svg").HandlerFunc(s.handleSVG).Methods(http.MethodGet)

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	jsonMiddleware := contentTypeMiddlewareFunc("application/json")
	apiJSONRoutes.Use(jsonMiddleware)

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/legend.json").HandlerFunc(s.handleLegend).Methods(http.MethodGet)
	apiJSONRoutes.Path("/features/{id}").HandlerFunc(s.handleFeature).Methods(http.MethodGet)
	apiJSONRoutes.Path("/view/click").HandlerFunc(s.handleViewClick).Methods(http.MethodPost, http.MethodOptions)

	return router
}
