package ws

import (
	"fmt"
	"net/http"
	"time"

	"delegatesigner/internal/manager"

	"go.uber.org/zap"
)

type WSServer struct {
	port    int
	manager *manager.Manager
	logger  *zap.Logger
}

func New(port int, manager *manager.Manager, logger *zap.Logger) *WSServer {
	return &WSServer{
		port:    port,
		manager: manager,
		logger:  logger.Named("ws"),
	}
}

func NewWSServer(port int, manager *manager.Manager, logger *zap.Logger) *http.Server {
	wsServer := New(port, manager, logger)

	// Connections are long lived, only the handshake is bounded.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", wsServer.port),
		Handler:           wsServer.Serve(),
		IdleTimeout:       time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}
