// Package ws pushes queue, clinic and ambulance events to websocket clients.
package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	EventQueueTokenCreated = "queue.token_created"
	EventQueueTokenUpdated = "queue.token_updated"
	EventClinicUpdated     = "clinic.updated"
	EventAmbulanceCreated  = "ambulance.created"
	EventAmbulanceUpdated  = "ambulance.updated"
)

// Event is the JSON frame sent to subscribers.
type Event struct {
	Type     string      `json:"type"`
	ClinicID string      `json:"clinicId,omitempty"`
	Data     interface{} `json:"data"`
	SentAt   time.Time   `json:"sentAt"`
}

// Publisher is what controllers need from the hub.
type Publisher interface {
	Publish(Event)
}

// Client is one websocket connection. An empty ClinicID subscribes to all
// events.
type Client struct {
	Conn     *websocket.Conn
	Send     chan []byte
	ClinicID string
}

type message struct {
	clinicID string
	payload  []byte
}

// Hub owns the client set; only Run touches it.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	countReq   chan chan int
	done       chan struct{}
	logger     zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		countReq:   make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Str("clinicId", client.ClinicID).Int("clients", len(h.clients)).Msg("ws client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Debug().Str("clinicId", client.ClinicID).Msg("ws client unregistered")
			}
		case reply := <-h.countReq:
			reply <- len(h.clients)
		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.ClinicID != "" && client.ClinicID != msg.clinicID {
					continue
				}
				select {
				case client.Send <- msg.payload:
				default:
					close(client.Send)
					delete(h.clients, client)
					h.logger.Debug().Str("clinicId", client.ClinicID).Msg("ws client dropped, send buffer full")
				}
			}
		}
	}
}

// Publish queues ev for delivery. It is a no-op once the hub has stopped.
func (h *Hub) Publish(ev Event) {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error().Err(err).Str("type", ev.Type).Msg("failed to marshal ws event")
		return
	}
	select {
	case h.broadcast <- message{clinicID: ev.ClinicID, payload: payload}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients, or 0 once stopped.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	select {
	case h.countReq <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
