package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"recyclegame/internal/dto"
	"recyclegame/internal/logger"
	hub "recyclegame/internal/services/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler streams rendered frames to the viewer and applies the
// control messages it sends back.
func ViewWebsocketHandler(ctrl Controller, hubService *hub.HubService, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		connection.SetReadLimit(4096)
		connection.SetReadDeadline(time.Now().Add(pongWait))
		connection.SetPongHandler(func(appData string) error {
			connection.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		hubService.Register(connection)
		defer hubService.Unregister(connection)

		stopPing := make(chan struct{})
		defer close(stopPing)
		go func() {
			ticker := time.NewTicker(pingPeriod)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					// Control frames may be written concurrently with data frames.
					if err := connection.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
						return
					}
				case <-stopPing:
					return
				}
			}
		}()

		for {
			_, data, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warning("⚠️  Viewer disconnected: %v", err)
				}
				return
			}
			connection.SetReadDeadline(time.Now().Add(pongWait))

			var msg dto.ControlMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Warning("⚠️  Invalid control message: %v", err)
				continue
			}

			resp, status := runControl(r.Context(), ctrl, msg)
			if status != http.StatusOK {
				logger.Warning("⚠️  Control %q rejected: %s", msg.Action, resp.Error)
			}
			reply, err := json.Marshal(resp)
			if err != nil {
				logger.Error("Error encoding control response: %v", err)
				continue
			}
			hubService.Send(connection, reply)
		}
	}
}
