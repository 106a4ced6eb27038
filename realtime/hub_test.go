package realtime

import (
	"encoding/json"
	"testing"
	"time"
)

func registered(t *testing.T, hub *Hub, room string) *Client {
	t.Helper()
	client := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	hub.Register <- client

	// The register channel hands off before Run updates the room map; wait
	// for the membership to land so broadcasts cannot race it.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.rooms[room][client]
		hub.mu.RUnlock()
		if ok {
			return client
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client never joined room %s", room)
	return nil
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return nil
	}
}

func TestBroadcastReachesOnlyOwnRoom(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	watcher := registered(t, hub, MatchRoom(1))
	bystander := registered(t, hub, MatchRoom(2))

	hub.BroadcastToRoom(MatchRoom(1), Message{
		Type:   MessageTypeMatchUpdated,
		RoomID: MatchRoom(1),
	})

	var got Message
	if err := json.Unmarshal(receive(t, watcher), &got); err != nil {
		t.Fatalf("decode broadcast: %v", err)
	}
	if got.Type != MessageTypeMatchUpdated || got.RoomID != "match_1" {
		t.Errorf("message = %+v", got)
	}

	select {
	case msg := <-bystander.Send:
		t.Errorf("bystander received %s", msg)
	default:
	}
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// Must not panic or block.
	hub.BroadcastToRoom(MatchRoom(99), Message{Type: MessageTypeMatchUpdated})
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := registered(t, hub, MatchRoom(1))
	hub.Unregister <- client

	select {
	case _, open := <-client.Send:
		if open {
			t.Error("send channel still open after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}

func TestFullSendBufferIsSkipped(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Hub: hub, Send: make(chan []byte), Room: MatchRoom(1)}
	hub.Register <- client

	// An unbuffered channel with no reader must not block the broadcast.
	done := make(chan struct{})
	go func() {
		hub.BroadcastToRoom(MatchRoom(1), Message{Type: MessageTypeMatchUpdated})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}
