// Package push delivers real-time list change notifications.
//
// A Hub broadcasts the full list collection to connected WebSocket
// clients whenever the underlying store changes. Other processes
// subscribe with Subscribe and receive each payload in order, which is
// how a second client (or tab) sees edits without polling.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/tododos/tododos/internal/todo"
)

// MessageType defines the type of push message.
type MessageType string

const (
	// MessageTypeLists carries the full, ordered list collection.
	MessageTypeLists MessageType = "lists"
)

// Message is the wire envelope for push payloads.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Lists     []todo.List `json:"lists,omitempty"`
}

// Config holds hub configuration.
type Config struct {
	// Port to listen on (default: 8377).
	Port int

	// Snapshot supplies the current collection for newly connected
	// clients, so a subscriber's first payload arrives immediately.
	Snapshot func() []todo.List

	// Logger for hub activity (default: stderr logger).
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:   8377,
		Logger: log.Default(),
	}
}

// Hub manages WebSocket subscribers and broadcasts list payloads.
type Hub struct {
	addr     string
	snapshot func() []todo.List
	listener net.Listener
	server   *http.Server

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewHub creates a push hub.
func NewHub(config *Config) *Hub {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Hub{
		addr:      fmt.Sprintf(":%d", config.Port),
		snapshot:  config.Snapshot,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start begins the HTTP server and WebSocket handler.
func (h *Hub) Start() error {
	ln, err := net.Listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.addr, err)
	}
	h.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)

	h.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	h.wg.Add(1)
	go h.broadcastLoop()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.logger.Printf("Push hub listening on %s", h.addr)
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.logger.Printf("Server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the hub.
func (h *Hub) Stop() error {
	h.logger.Println("Stopping push hub")

	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "Server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	h.wg.Wait()

	h.logger.Println("Push hub stopped")
	return nil
}

// BroadcastLists sends the full collection to all subscribers.
func (h *Hub) BroadcastLists(lists []todo.List) {
	msg := Message{
		Type:      MessageTypeLists,
		Timestamp: time.Now(),
		Lists:     lists,
	}
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
	default:
		h.logger.Println("Warning: broadcast channel full, dropping payload")
	}
}

// broadcastLoop fans messages out to all connected clients.
func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Printf("Failed to marshal message: %v", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			// Write outside the lock so a slow client cannot stall
			// new subscriptions.
			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					h.logger.Printf("Failed to send to subscriber: %v", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

// handleWebSocket upgrades HTTP connections and registers subscribers.
func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.clientsMu.Unlock()

	h.logger.Printf("Subscriber connected (total: %d)", clientCount)

	// New subscribers get the current collection right away.
	if h.snapshot != nil {
		initial := Message{
			Type:      MessageTypeLists,
			Timestamp: time.Now(),
			Lists:     h.snapshot(),
		}
		if data, err := json.Marshal(initial); err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = conn.Write(ctx, websocket.MessageText, data)
			cancel()
		}
	}

	go h.readLoop(conn)
}

// readLoop keeps the connection alive and detects disconnects.
// Subscriber messages are not processed.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		_, _, err := conn.Read(h.ctx)
		if err != nil {
			return
		}
	}
}

// removeClient safely removes a subscriber connection.
func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		clientCount := len(h.clients)
		h.clientsMu.Unlock()

		_ = conn.Close(websocket.StatusNormalClosure, "")
		h.logger.Printf("Subscriber disconnected (total: %d)", clientCount)
	} else {
		h.clientsMu.Unlock()
	}
}

// handleHealth returns hub health status.
func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.clientsMu.RLock()
	clientCount := len(h.clients)
	h.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"subscribers": clientCount,
	})
}

// Addr returns the hub's listening address.
func (h *Hub) Addr() string {
	if h.listener != nil {
		return h.listener.Addr().String()
	}
	return h.addr
}

// ClientCount returns the current number of subscribers.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
