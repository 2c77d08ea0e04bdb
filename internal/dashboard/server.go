package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/tkingovr/pipefilter/internal/audit"
	"github.com/tkingovr/pipefilter/internal/groups"
	"github.com/tkingovr/pipefilter/internal/node"
	pfsync "github.com/tkingovr/pipefilter/internal/sync"
)

// Server is the configuration surface: node inspection and editing, the
// extraction log and the sync stream observers attach to.
type Server struct {
	router     *httprouter.Router
	logger     *slog.Logger
	nodes      *node.Registry
	auditStore audit.Store
	hub        *pfsync.Hub
	resolver   groups.Resolver
	upgrader   websocket.Upgrader
	addr       string
}

// NewServer creates a new configuration server.
func NewServer(addr string, nodes *node.Registry, store audit.Store, hub *pfsync.Hub, resolver groups.Resolver, logger *slog.Logger) *Server {
	s := &Server{
		router:     httprouter.New(),
		logger:     logger,
		nodes:      nodes,
		auditStore: store,
		hub:        hub,
		resolver:   resolver,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		addr: addr,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleOverview)
	s.router.GET("/api/v1/nodes", s.handleListNodes)
	s.router.GET("/api/v1/nodes/:id", s.handleGetNode)
	s.router.PUT("/api/v1/nodes/:id/slots/:index", s.handleSetSlot)
	s.router.PUT("/api/v1/nodes/:id/mode", s.handleSetMode)
	s.router.GET("/api/v1/nodes/:id/sync", s.handleSync)
	s.router.GET("/api/v1/stats", s.handleAPIStats)
	s.router.GET("/api/v1/audit", s.handleAPIAudit)
	s.router.GET("/api/v1/audit/stream", s.handleAuditStream)
}

// ListenAndServe starts the HTTP server and stops it when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	s.logger.Info("starting configuration server", "addr", s.addr)
	return srv.ListenAndServe()
}

// Handler returns the HTTP handler for embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.router
}
