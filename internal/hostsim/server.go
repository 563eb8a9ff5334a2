package hostsim

import (
	"context"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notchbar/notchbar-go/internal/logging"
	"github.com/notchbar/notchbar-go/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // development host, any origin may connect
	},
}

// Server is the simulator: channel endpoint, debug REST surface and metrics
// scrape on one listener.
type Server struct {
	cfg       Config
	log       *logging.Logger
	mets      *Metrics
	policy    *Policy
	store     *Store
	sanitizer *Sanitizer

	mu       sync.Mutex
	sessions map[*session]struct{}

	httpSrv  *http.Server
	listener net.Listener
}

// New assembles a simulator. A nil logger is replaced with a no-op.
func New(cfg Config, log *logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		cfg:       cfg,
		log:       log.Named("hostsim"),
		mets:      NewMetrics(),
		policy:    NewPolicy(cfg.Auth),
		store:     NewStore(cfg.Limits),
		sanitizer: NewSanitizer(),
		sessions:  make(map[*session]struct{}),
	}
}

// Router builds the HTTP surface. Exposed so tests can mount the simulator
// on an httptest server.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(Middleware(s.mets))

	r.GET("/health", s.handleHealth)
	r.GET(s.cfg.Path, s.handleChannel)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.mets.Registry, promhttp.HandlerOpts{})))

	if s.cfg.Debug.Enabled {
		dbg := r.Group("/debug", DebugCORS(), RateLimit(s.cfg.Debug))
		dbg.GET("/state", s.handleState)
		dbg.POST("/authorization", s.handleAuthorizationFlip)
		dbg.POST("/dismiss", s.handleUserDismiss)
	}

	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.httpSrv = &http.Server{Handler: s.Router()}
	s.log.Info("simulator listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("channel_path", s.cfg.Path),
	)
	if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Addr reports the bound listen address, useful when configured with port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown closes every session and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for sess := range s.sessions {
		sess.conn.Close()
	}
	s.sessions = make(map[*session]struct{})
	s.mu.Unlock()

	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// handleChannel upgrades to WebSocket and runs the session read loop.
func (s *Server) handleChannel(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("channel upgrade failed", zap.Error(err))
		return
	}

	id := newSessionID()
	sess := &session{
		id:   id,
		srv:  s,
		conn: conn,
		log: s.log.With(
			zap.String("session_id", id),
			zap.String("remote", conn.RemoteAddr().String()),
		),
	}
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mets.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()

	sess.log.Info("session connected")
	sess.run()
}

// dropSession removes a finished session and closes its connection.
func (s *Server) dropSession(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mets.SessionsActive.Set(float64(len(s.sessions)))
	s.mu.Unlock()
	sess.conn.Close()
}

// broadcast pushes an event to every connected session. The real host
// targets the owning client; the simulator fans out so any number of test
// clients observe the same state changes.
func (s *Server) broadcast(event wire.Event, payload any) {
	s.mu.Lock()
	targets := make([]*session, 0, len(s.sessions))
	for sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.Unlock()

	s.mets.RecordEvent(string(event))
	for _, sess := range targets {
		sess.push(event, payload)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.cfg.Version,
	})
}

// handleState dumps connected sessions, authorization decisions, live
// entities and recently dismissed ids.
func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":       s.cfg.Version,
		"sessions":      s.sessionIDs(),
		"authorization": s.policy.Snapshot(),
		"entities":      s.store.Snapshot(),
		"dismissed":     s.store.Dismissed(),
	})
}

// sessionIDs lists connected sessions sorted by id, which is connection order
// because the ids are ULIDs.
func (s *Server) sessionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for sess := range s.sessions {
		ids = append(ids, sess.id)
	}
	sort.Strings(ids)
	return ids
}

// authorizationFlipRequest changes a bundle's authorization from the debug
// surface, as if the user toggled it in the host preferences.
type authorizationFlipRequest struct {
	BundleID string `json:"bundle_id" binding:"required"`
	Granted  bool   `json:"granted"`
}

func (s *Server) handleAuthorizationFlip(c *gin.Context) {
	var req authorizationFlipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bundle_id is required"})
		return
	}
	s.policy.Flip(req.BundleID, req.Granted)
	s.broadcast(wire.EventAuthorizationChanged, wire.AuthorizationEvent{Granted: req.Granted})
	s.log.Info("authorization flipped",
		zap.String("bundle_id", req.BundleID),
		zap.Bool("granted", req.Granted),
	)
	c.JSON(http.StatusOK, gin.H{
		"bundle_id": req.BundleID,
		"granted":   req.Granted,
	})
}

// userDismissRequest simulates the user dismissing an entity from the host
// UI.
type userDismissRequest struct {
	Kind     Kind   `json:"kind" binding:"required"`
	ID       string `json:"id" binding:"required"`
	BundleID string `json:"bundle_id"`
}

func (s *Server) handleUserDismiss(c *gin.Context) {
	var req userDismissRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and id are required"})
		return
	}
	store := s.store.ByKind(req.Kind)
	if store == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}
	if !store.Dismiss(req.BundleID, req.ID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such entity"})
		return
	}
	s.mets.EntitiesActive.WithLabelValues(string(req.Kind)).Set(float64(store.Total()))
	s.broadcast(dismissEvent(req.Kind), wire.DismissedEvent{ID: req.ID, BundleID: req.BundleID})
	c.JSON(http.StatusOK, gin.H{
		"kind": req.Kind,
		"id":   req.ID,
	})
}

func dismissEvent(kind Kind) wire.Event {
	switch kind {
	case KindLockWidget:
		return wire.EventLockWidgetDismissed
	case KindNotchExperience:
		return wire.EventNotchExperienceDismissed
	default:
		return wire.EventLiveActivityDismissed
	}
}
