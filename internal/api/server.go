package api

import (
	"fmt"
	"net/http"
	"time"

	"delegatesigner/internal/manager"

	"go.uber.org/zap"
)

type APIServer struct {
	port    int
	manager *manager.Manager
	logger  *zap.Logger
	now     func() time.Time
}

func New(port int, manager *manager.Manager, logger *zap.Logger) *APIServer {
	return &APIServer{
		port:    port,
		manager: manager,
		logger:  logger.Named("api"),
		now:     time.Now,
	}
}

func NewAPIServer(port int, manager *manager.Manager, logger *zap.Logger) *http.Server {
	apiServer := New(port, manager, logger)

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", apiServer.port),
		Handler:      apiServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
