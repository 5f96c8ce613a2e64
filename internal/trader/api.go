package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// APIServer provides an HTTP interface onto the running engine: status,
// live portfolio, risk metrics, and a websocket stream of snapshots.
type APIServer struct {
	server   *http.Server
	engine   *Engine
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewAPIServer creates a new APIServer.
func NewAPIServer(engine *Engine, logger *zap.Logger) *APIServer {
	addr := fmt.Sprintf(":%d", engine.cfg.Server.Port)
	server := &http.Server{
		Addr: addr,
	}

	return &APIServer{
		server: server,
		engine: engine,
		logger: logger.Named("api-server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/portfolio", s.portfolioHandler)
	mux.HandleFunc("/api/metrics", s.metricsHandler)
	mux.HandleFunc("/ws", s.streamHandler)
	s.server.Handler = mux

	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		UUID      string `json:"uuid"`
		Name      string `json:"name"`
		Provider  string `json:"provider"`
		Strategy  string `json:"strategy"`
		StartTime string `json:"start_time"`
		Uptime    string `json:"uptime"`
	}{
		UUID:      s.engine.UUID,
		Name:      s.engine.Name,
		Provider:  s.engine.Provider(),
		Strategy:  s.engine.Manager().Strategy().Name,
		StartTime: s.engine.StartTime.Format(time.RFC3339),
		Uptime:    time.Since(s.engine.StartTime).String(),
	}

	s.writeJSON(w, status)
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *APIServer) portfolioHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Manager().Portfolio())
}

func (s *APIServer) metricsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Manager().GetRiskMetrics())
}

// streamHandler pushes the live portfolio to a websocket client on a fixed
// ticker until the client disconnects.
func (s *APIServer) streamHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.logger.Info("Websocket client connected", zap.String("remote", r.RemoteAddr))

	// Send the current state immediately.
	if err := conn.WriteJSON(s.engine.Manager().Portfolio()); err != nil {
		return
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.WriteJSON(s.engine.Manager().Portfolio()); err != nil {
			s.logger.Debug("Websocket client disconnected", zap.String("remote", r.RemoteAddr))
			return
		}
	}
}

func (s *APIServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
