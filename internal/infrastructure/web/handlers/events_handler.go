package handlers

import (
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/notify"
	"coin-market-service/internal/infrastructure/web/middleware"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Parámetros de la conexión WebSocket de eventos
const (
	eventsWriteWait    = 10 * time.Second
	eventsPongWait     = 60 * time.Second
	eventsPingInterval = 30 * time.Second
)

// EventsHandler entrega los FavoriteChange de la sesión por WebSocket
type EventsHandler struct {
	sessions SessionSource
	buffer   int
	upgrader websocket.Upgrader
}

// NewEventsHandler creates the handler; buffer es el tamaño de cola por suscriptor
func NewEventsHandler(sessions SessionSource, buffer int) *EventsHandler {
	if buffer <= 0 {
		buffer = notify.DefaultBuffer
	}
	return &EventsHandler{
		sessions: sessions,
		buffer:   buffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Stream maneja GET /api/v1/favorites/events
// @Summary Favorite change events over WebSocket
// @Tags favorites
// @Param access_token query string false "Bearer token for clients that cannot set headers"
// @Security BearerAuth
// @Success 101
// @Router /api/v1/favorites/events [get]
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.sessions.Session(middleware.TokenFromContext(ctx))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade ya respondió al cliente
		logging.Warn(ctx, "WebSocket upgrade failed", logging.Fields{"error": err.Error()})
		return
	}
	defer conn.Close()

	id, events := session.Notifier.Subscribe(h.buffer)
	defer session.Notifier.Unsubscribe(id)

	logging.Info(ctx, "Favorites event stream opened", logging.Fields{"subscriber_id": id})

	closed := make(chan struct{})
	go h.readLoop(conn, closed)

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-events:
			if !ok {
				// Sesión expulsada o servidor apagándose
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"),
					time.Now().Add(eventsWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(eventsWriteWait))
			if err := conn.WriteJSON(change); err != nil {
				logging.Debug(ctx, "Failed to write favorites event", logging.Fields{"error": err.Error()})
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(eventsWriteWait)); err != nil {
				return
			}
		case <-closed:
			logging.Info(ctx, "Favorites event stream closed by client", logging.Fields{"subscriber_id": id})
			return
		}
	}
}

// readLoop descarta los mensajes del cliente y detecta el cierre
func (h *EventsHandler) readLoop(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	_ = conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(eventsPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
