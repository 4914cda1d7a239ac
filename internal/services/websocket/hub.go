package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"recyclegame/internal/detect"
	"recyclegame/internal/dto"
	"recyclegame/internal/game"
	"recyclegame/internal/logger"
)

const broadcastBuffer = 16

type outbound struct {
	kind int
	data []byte
}

type directMessage struct {
	client  *websocket.Conn
	message []byte
}

// HubService fans rendered frames out to every connected viewer. All socket
// writes happen on the Run goroutine.
type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan outbound
	direct     chan directMessage
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger

	latestMu sync.Mutex
	latest   []byte
}

func NewHubService(logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan outbound, broadcastBuffer),
		direct:     make(chan directMessage, broadcastBuffer),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *HubService) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return nil

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", h.GetClientCount())
			if latest := h.latestFrame(); latest != nil {
				h.write(client, outbound{kind: websocket.TextMessage, data: latest})
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", h.GetClientCount())

		case msg := <-h.direct:
			h.mutex.RLock()
			_, ok := h.clients[msg.client]
			h.mutex.RUnlock()
			if ok {
				h.write(msg.client, outbound{kind: websocket.TextMessage, data: msg.message})
			}

		case message := <-h.broadcast:
			h.mutex.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for client := range h.clients {
				clients = append(clients, client)
			}
			h.mutex.RUnlock()
			for _, client := range clients {
				h.write(client, message)
			}
		}
	}
}

func (h *HubService) write(client *websocket.Conn, message outbound) {
	if err := client.WriteMessage(message.kind, message.data); err != nil {
		h.logger.Error("Error sending message: %v", err)
		h.mutex.Lock()
		delete(h.clients, client)
		h.mutex.Unlock()
		client.Close()
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues a message for every viewer. It never blocks; when the
// queue is full the message is dropped.
func (h *HubService) Broadcast(message []byte) {
	h.enqueue(outbound{kind: websocket.TextMessage, data: message})
}

// Stream queues a JPEG camera image for every viewer as a binary message.
func (h *HubService) Stream(image []byte) {
	h.enqueue(outbound{kind: websocket.BinaryMessage, data: image})
}

func (h *HubService) enqueue(message outbound) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warning("⚠️  Broadcast queue full - dropping frame")
	}
}

// Send queues a message for one viewer.
func (h *HubService) Send(client *websocket.Conn, message []byte) {
	select {
	case h.direct <- directMessage{client: client, message: message}:
	default:
		h.logger.Warning("⚠️  Direct queue full - dropping reply")
	}
}

// Render implements the session presenter: detections and state go out as
// one JSON frame.
func (h *HubService) Render(detections []detect.Detection, snapshot game.Snapshot) {
	message, err := json.Marshal(dto.NewFramePayload(detections, snapshot))
	if err != nil {
		h.logger.Error("Error encoding frame: %v", err)
		return
	}
	h.latestMu.Lock()
	h.latest = message
	h.latestMu.Unlock()
	h.Broadcast(message)
}

func (h *HubService) latestFrame() []byte {
	h.latestMu.Lock()
	defer h.latestMu.Unlock()
	return h.latest
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
