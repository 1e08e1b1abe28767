package web

import (
	"encoding/json"
	"log/slog"
)

// Message types pushed over the websocket
const (
	MessageTypeStatus  = "status"
	MessageTypeClick   = "click"
	MessageTypeSession = "session"
)

// Message is the envelope for every websocket push
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// StatusMessage reports a run-state change
type StatusMessage struct {
	State      string `json:"state"`
	Profile    string `json:"profile,omitempty"`
	ClickCount uint64 `json:"clickCount"`
}

// ClickMessage reports one delivered click
type ClickMessage struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	ClickType  string `json:"clickType"`
	ClickCount uint64 `json:"clickCount"`
}

// SessionMessage reports a finished run
type SessionMessage struct {
	Profile    string `json:"profile"`
	ClickCount int64  `json:"clickCount"`
	DurationMs int64  `json:"durationMs"`
	Reason     string `json:"reason"`
	Success    bool   `json:"success"`
}

// Hub fans messages out to the connected websocket clients
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes client registration and broadcasts. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client; drop it rather than stall the hub
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// BroadcastMessage encodes and queues a message for every client
func (h *Hub) BroadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to encode websocket message", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("Websocket broadcast queue full, dropping message", "type", msg.Type)
	}
}
