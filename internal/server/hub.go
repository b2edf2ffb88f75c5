package server

import (
	"encoding/json"
	"log"

	"github.com/sanaanm/webdesk/api"
	"github.com/sanaanm/webdesk/pkg/events"
)

// Hub owns the set of connected clients and fans event frames out to
// all of them.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Inbound frames to broadcast to all clients.
	broadcast chan []byte

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				_ = client.conn.Close()
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop the connection rather than
					// stall the broadcast loop.
					delete(h.clients, client)
					close(client.send)
					_ = client.conn.Close()
				}
			}
		}
	}
}

// RunBusBridge forwards every bus event to the hub as a JSON frame.
// It returns when the bus channel is closed.
func (h *Hub) RunBusBridge(bus *events.Bus) {
	ch := bus.SubscribeAll()
	for ev := range ch {
		frame, err := json.Marshal(wsFrame{Type: ev.Type, Payload: ev.Payload})
		if err != nil {
			log.Printf("webdeskd: ws frame encode: %v", err)
			continue
		}
		h.broadcast <- frame
	}
}

type wsFrame struct {
	Type    api.EventType `json:"type"`
	Payload any           `json:"payload"`
}
