package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"delegatesigner/internal/manager"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

func (ws *WSServer) Serve() http.Handler {
	mux := http.NewServeMux()

	// main and only route for the WebSocket server
	mux.HandleFunc("/", ws.MainHandler)
	ws.logger.Info("websocket routes registered", zap.Int("port", ws.port))

	return ws.corsMiddleware(mux)
}

func (ws *WSServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// MainHandler streams VERIFIED events to the client and accepts VERIFY
// requests from it. Failed requests are answered with REJECTED to the
// sender only.
func (ws *WSServer) MainHandler(w http.ResponseWriter, r *http.Request) {
	logger := ws.logger.With(zap.String("remote", r.RemoteAddr))

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer c.CloseNow()

	// Subscribe before reading so a client sees the result of its own request.
	id, events := ws.manager.Subscribe()
	defer ws.manager.Unsubscribe(id)
	logger.Debug("websocket client connected", zap.Uint64("subscriber", id))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	replies := make(chan []byte, 1)
	go ws.readLoop(ctx, cancel, c, replies, logger)

	for {
		select {
		case m, ok := <-events:
			if !ok {
				c.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := write(ctx, c, m); err != nil {
				logger.Debug("failed to write event", zap.Error(err))
				return
			}
		case m := <-replies:
			if err := write(ctx, c, m); err != nil {
				logger.Debug("failed to write reply", zap.Error(err))
				return
			}
		case <-ctx.Done():
			logger.Debug("websocket client disconnected", zap.Uint64("subscriber", id))
			return
		}
	}
}

func (ws *WSServer) readLoop(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, replies chan<- []byte, logger *zap.Logger) {
	defer cancel()

	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		if _, err := ws.manager.HandleReceiveEvent(data); err != nil {
			select {
			case replies <- manager.RejectedEvent(err):
			case <-ctx.Done():
				return
			}
		}
	}
}

func write(ctx context.Context, c *websocket.Conn, message []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, message)
}
