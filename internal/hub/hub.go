// Package hub fans duel read-model snapshots out to websocket subscribers.
// A single goroutine owns all subscriptions; everything else talks to it through its inbox.
package hub

import (
	"context"
	"log/slog"

	"vocabduel/internal/models"
)

// Msg is anything the hub loop understands
type Msg interface{ isHubMsg() }

// Subscribe registers a client for one duel. Initial is delivered first unless the hub has
// already seen a newer snapshot for the duel.
type Subscribe struct {
	DuelID   string
	ClientID string
	Initial  models.DuelView
	Outbox   chan models.DuelView
}

// Unsubscribe removes a client; its outbox is closed
type Unsubscribe struct {
	DuelID   string
	ClientID string
}

// Publish sends a snapshot to every subscriber of View.ID
type Publish struct {
	View models.DuelView
}

// Stats reports subscriber counts; used by health checks and tests
type Stats struct {
	Reply chan map[string]int
}

func (Subscribe) isHubMsg()   {}
func (Unsubscribe) isHubMsg() {}
func (Publish) isHubMsg()     {}
func (Stats) isHubMsg()       {}

// Hub is the subscription registry actor
type Hub struct {
	inbox  chan Msg
	duels  map[string]map[string]chan models.DuelView
	latest map[string]models.DuelView
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// New starts a hub that runs until parent is cancelled
func New(parent context.Context, logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan Msg, 64),
		duels:  make(map[string]map[string]chan models.DuelView),
		latest: make(map[string]models.DuelView),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	go h.loop()
	return h
}

// Inbox exposes the hub's message channel
func (h *Hub) Inbox() chan<- Msg { return h.inbox }

// Publish hands a snapshot to the hub without blocking past shutdown
func (h *Hub) Publish(view models.DuelView) {
	select {
	case h.inbox <- Publish{View: view}:
	case <-h.ctx.Done():
	}
}

// Subscribe registers outbox for duelID and sends it initial (or anything newer)
func (h *Hub) Subscribe(duelID, clientID string, initial models.DuelView, outbox chan models.DuelView) {
	select {
	case h.inbox <- Subscribe{DuelID: duelID, ClientID: clientID, Initial: initial, Outbox: outbox}:
	case <-h.ctx.Done():
		close(outbox)
	}
}

// Unsubscribe drops a client
func (h *Hub) Unsubscribe(duelID, clientID string) {
	select {
	case h.inbox <- Unsubscribe{DuelID: duelID, ClientID: clientID}:
	case <-h.ctx.Done():
	}
}

// Subscribers returns the number of clients per duel
func (h *Hub) Subscribers(ctx context.Context) map[string]int {
	reply := make(chan map[string]int, 1)
	select {
	case h.inbox <- Stats{Reply: reply}:
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
	select {
	case counts := <-reply:
		return counts
	case <-ctx.Done():
		return nil
	}
}

// Shutdown stops the loop and closes every outbox
func (h *Hub) Shutdown() {
	h.cancel()
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Subscribe:
				clients := h.duels[msg.DuelID]
				if clients == nil {
					clients = make(map[string]chan models.DuelView)
					h.duels[msg.DuelID] = clients
				}
				if old, ok := clients[msg.ClientID]; ok {
					close(old)
				}
				clients[msg.ClientID] = msg.Outbox

				first := msg.Initial
				if last, ok := h.latest[msg.DuelID]; ok && last.Version > first.Version {
					first = last
				}
				h.send(msg.DuelID, msg.ClientID, first)

			case Unsubscribe:
				if ch, ok := h.duels[msg.DuelID][msg.ClientID]; ok {
					close(ch)
					h.remove(msg.DuelID, msg.ClientID)
				}

			case Publish:
				id := msg.View.ID
				if last, ok := h.latest[id]; ok && last.Version > msg.View.Version {
					// a slower writer's snapshot arriving after a newer one
					break
				}
				if _, ok := h.duels[id]; !ok {
					break
				}
				h.latest[id] = msg.View
				for clientID := range h.duels[id] {
					h.send(id, clientID, msg.View)
				}

			case Stats:
				counts := make(map[string]int, len(h.duels))
				for id, clients := range h.duels {
					counts[id] = len(clients)
				}
				msg.Reply <- counts
			}
		}
	}
}

// send delivers without blocking; a client that cannot keep up is dropped
func (h *Hub) send(duelID, clientID string, view models.DuelView) {
	ch := h.duels[duelID][clientID]
	select {
	case ch <- view:
	default:
		h.logger.Warn("Dropping slow subscriber", "duel_id", duelID, "client_id", clientID)
		close(ch)
		h.remove(duelID, clientID)
	}
}

func (h *Hub) remove(duelID, clientID string) {
	delete(h.duels[duelID], clientID)
	if len(h.duels[duelID]) == 0 {
		delete(h.duels, duelID)
		delete(h.latest, duelID)
	}
}

func (h *Hub) shutdown() {
	for duelID, clients := range h.duels {
		for clientID, ch := range clients {
			close(ch)
			delete(clients, clientID)
		}
		delete(h.duels, duelID)
	}
}
