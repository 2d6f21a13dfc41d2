package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/gravitas-games/crimeboss/internal/config"
	"github.com/gravitas-games/crimeboss/internal/storage"
	"github.com/gravitas-games/crimeboss/pkg/engine"
)

// Deps are the collaborators the server is built from.
type Deps struct {
	Engine    *engine.Engine
	Snapshots storage.SnapshotStore
	Validator TokenValidator
	// Redis is closed on shutdown when set.
	Redis  *redis.Client
	Logger logrus.FieldLogger
}

// Server represents the game server
type Server struct {
	config    *config.Config
	session   *Session
	engine    *engine.Engine
	upgrader  websocket.Upgrader
	httpSrv   *http.Server
	validator TokenValidator
	redis     *redis.Client
	log       logrus.FieldLogger

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Engine == nil || deps.Snapshots == nil || deps.Validator == nil {
		return nil, errors.New("server requires an engine, a snapshot store and a token validator")
	}
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.Info("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:      cfg,
		engine:      deps.Engine,
		validator:   deps.Validator,
		redis:       deps.Redis,
		log:         log,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    []string{"access_token"},
			CheckOrigin: func(r *http.Request) bool {
				// TODO: check Origin against the game client's domain once it is configurable
				return true
			},
		},
	}

	session, err := NewSession("main", cfg, deps.Engine, deps.Snapshots, log)
	if err != nil {
		cancel()
		return nil, err
	}
	srv.session = session

	log.Info("Server initialized successfully")
	return srv, nil
}

// Router returns the HTTP routes of the server
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/{id}", s.handleItem).Methods(http.MethodGet)
	api.HandleFunc("/recipes", s.handleRecipes).Methods(http.MethodGet)
	api.HandleFunc("/state", s.handleState).Methods(http.MethodGet)
	return r
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	s.log.Infof("Starting server on %s", addr)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.log.Infof("WebSocket endpoint: ws://%s/ws", addr)
	s.log.Infof("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.log.Info("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.connMu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.connMu.Unlock()
	for _, conn := range conns {
		conn.Close()
	}

	s.session.Flush()

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.log.WithError(err).Warn("Redis close error")
		}
	}

	s.log.Info("Server shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tokenString := extractTokenFromHeader(r)
	if tokenString == "" {
		s.log.Debugf("Missing JWT token from %s", r.RemoteAddr)
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}

	boss, err := s.validator.ValidateToken(tokenString)
	if err != nil {
		s.log.WithError(err).Infof("Invalid JWT token from %s", r.RemoteAddr)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	if !s.session.CanJoin(boss) {
		http.Error(w, "Server is full", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	boss.Connected = true
	boss.ConnectedAt = time.Now()
	conn := NewConnection(ws, s, boss)
	if err := s.session.AddConnection(boss, conn); err != nil {
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		ws.Close()
		return
	}

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	s.log.WithField("boss", boss.SaveKey()).Infof("WebSocket connection established: %s (%s)", boss.Username, r.RemoteAddr)

	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	boss.LastSeen = time.Now()
	s.log.WithField("boss", boss.SaveKey()).Infof("WebSocket connection closed: %s (%s)", boss.Username, r.RemoteAddr)
}
