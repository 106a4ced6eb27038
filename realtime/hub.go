package realtime

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
)

// Message is the envelope pushed to subscribed clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

const MessageTypeMatchUpdated = "MATCH_UPDATED"

// MatchRoom names the hub room for one match.
func MatchRoom(matchID int) string {
	return "match_" + strconv.Itoa(matchID)
}

// Hub fans match updates out to the clients watching each room. Clients open
// a websocket per match; every server-side mutation of that match broadcasts
// the fresh document into the room, which is how the clients observe state.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom sends a message to every client in the given room. Clients
// whose send buffer is full are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("realtime: failed to marshal message for room %s: %v", roomID, err)
		return
	}

	for client := range clients {
		client.trySend(messageBytes)
	}
}
