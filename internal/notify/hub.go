// Package notify delivers notifications to club members. Core operations
// (deposit approved, refund issued, booking cancelled) hand the package a
// plain (memberID, message, type) triple; the package persists it as a
// Notification row and fans it out to any live subscribers of that member.
//
// The Hub manages all live subscriptions. It runs in its own goroutine and
// processes registration, unregistration, and broadcast events through
// channels — this keeps all map access on a single goroutine, which avoids
// data races (concurrent map reads/writes cause panics in Go).
package notify

import "sync"

// Client represents a single live subscriber — one open connection from a
// member's device. A member with the app open on two devices has two Clients.
type Client struct {
	MemberID string      // Which member this client belongs to — used to route messages
	Send     chan []byte // Buffered channel of outgoing messages; the Hub writes here
}

// Message is a unit of data to deliver to all clients of a specific member.
type Message struct {
	MemberID string // The member this message belongs to
	Data     []byte // The raw bytes to send (JSON-encoded notification)
}

// Hub tracks active clients grouped by member ID.
type Hub struct {
	// clients is a nested map: memberID -> set of Client pointers.
	// Using a map[*Client]bool as a "set" is a common Go idiom because Go has
	// no built-in set type.
	clients map[string]map[*Client]bool

	broadcast  chan *Message // Incoming messages to deliver to a member's clients
	register   chan *Client  // Signals that a new client connected
	unregister chan *Client  // Signals that a client disconnected

	// mu protects the clients map when it's read during broadcast while the
	// main loop modifies it. A RWMutex allows multiple concurrent readers OR
	// one exclusive writer — suitable since broadcasts just read the client list.
	mu sync.RWMutex
}

// NewHub creates and initializes a Hub with empty channels and maps.
// The broadcast channel has a buffer of 256 so writers don't block immediately
// if the Hub goroutine is briefly busy. register and unregister are unbuffered
// because those operations need to complete synchronously.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the Hub's main event loop. It must be called in a goroutine
// ("go hub.Run()"). It blocks forever, processing one event at a time.
func (h *Hub) Run() {
	for {
		select {

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.MemberID] == nil {
				h.clients[client.MemberID] = make(map[*Client]bool)
			}
			h.clients[client.MemberID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := h.clients[msg.MemberID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.Send <- msg.Data:
				// If the channel buffer is full, the client is too slow.
				// Drop it rather than blocking the loop. Removal happens
				// inline: sending to h.unregister from here would deadlock,
				// since this goroutine is the only reader.
				default:
					h.remove(client)
				}
			}
		}
	}
}

// remove drops a client and closes its Send channel. Only called from the
// Run goroutine.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.MemberID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send) // Signals the writer goroutine to stop
	if len(clients) == 0 {
		delete(h.clients, client.MemberID)
	}
}

// BroadcastToMember sends data to all clients of the given member.
func (h *Hub) BroadcastToMember(memberID string, data []byte) {
	h.broadcast <- &Message{MemberID: memberID, Data: data}
}

// Register adds a client to the Hub so it starts receiving its member's
// notifications. Called when a connection is opened.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the Hub when its connection closes.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
