package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/tcriess/lightspeed-rooms/globals"
	"github.com/tcriess/lightspeed-rooms/types"
)

const (
	maxMessageSize       = 512
	pongWait             = 2 * time.Minute
	pingPeriod           = time.Minute
	writeWait            = 10 * time.Second
	broadcastChannelSize = 1000
	sendChannelSize      = 256
)

type roomMessage struct {
	roomID uint
	data   []byte
	// close disconnects all clients of the room after data has been queued
	close bool
}

// Hub keeps the websocket clients of all rooms and fans out room events to them. All changes to the client sets
// happen in Run; the Send channel of a client is closed by the hub only.
type Hub struct {
	// Registered clients per room.
	rooms map[uint]map[*Client]struct{}

	// Register a new client to the hub.
	Register chan *Client

	// Unregister a client from the hub.
	Unregister chan *Client

	broadcast chan roomMessage
	done      chan struct{}

	// guards rooms for readers outside of Run
	sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, broadcastChannelSize),
		done:       make(chan struct{}),
	}
}

// NoClients returns the number of clients registered for room roomID.
func (h *Hub) NoClients(roomID uint) int {
	h.RLock()
	defer h.RUnlock()
	return len(h.rooms[roomID])
}

// Publish queues msg for all clients of room roomID. It never blocks; if the queue is full the message is dropped.
func (h *Hub) Publish(roomID uint, msg *types.WebsocketMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		globals.AppLogger.Error("could not marshal ws message", "error", err)
		return
	}
	h.enqueue(roomMessage{roomID: roomID, data: data})
}

// CloseRoom disconnects all clients of room roomID after the messages published so far have been queued.
func (h *Hub) CloseRoom(roomID uint) {
	h.enqueue(roomMessage{roomID: roomID, close: true})
}

func (h *Hub) enqueue(m roomMessage) {
	select {
	case h.broadcast <- m:
	default:
		globals.AppLogger.Warn("broadcast queue full, dropping message", "room", m.roomID)
	}
}

// Run is the main hub event loop handling register, unregister and broadcast events. It returns when ctx is done,
// disconnecting all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.Lock()
			for roomID, clients := range h.rooms {
				for client := range clients {
					close(client.Send)
				}
				delete(h.rooms, roomID)
			}
			h.Unlock()
			globals.AppLogger.Debug("hub stopped")
			return

		case client := <-h.Register:
			h.Lock()
			clients, ok := h.rooms[client.roomID]
			if !ok {
				clients = make(map[*Client]struct{})
				h.rooms[client.roomID] = clients
			}
			clients[client] = struct{}{}
			h.Unlock()
			globals.AppLogger.Debug("registered client", "room", client.roomID)

		case client := <-h.Unregister:
			h.Lock()
			h.remove(client)
			h.Unlock()

		case message := <-h.broadcast:
			h.Lock()
			for client := range h.rooms[message.roomID] {
				if message.data != nil {
					select {
					case client.Send <- message.data:
					default:
						globals.AppLogger.Info("client too slow, disconnecting", "room", message.roomID)
						h.remove(client)
						continue
					}
				}
				if message.close {
					h.remove(client)
				}
			}
			h.Unlock()
		}
	}
}

// remove must be called with the lock held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.roomID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.roomID)
	}
	globals.AppLogger.Debug("unregistered client", "room", client.roomID)
}
