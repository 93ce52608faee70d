package notify

import (
	"testing"
	"time"
)

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHubRoutesToMember(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := &Client{MemberID: "alice", Send: make(chan []byte, 4)}
	bob := &Client{MemberID: "bob", Send: make(chan []byte, 4)}
	hub.Register(alice)
	hub.Register(bob)

	hub.BroadcastToMember("alice", []byte("hello"))

	if got := string(receive(t, alice.Send)); got != "hello" {
		t.Errorf("alice received %q, want %q", got, "hello")
	}
	select {
	case data := <-bob.Send:
		t.Errorf("bob received %q, want nothing", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubMultipleClientsPerMember(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := &Client{MemberID: "carol", Send: make(chan []byte, 4)}
	laptop := &Client{MemberID: "carol", Send: make(chan []byte, 4)}
	hub.Register(phone)
	hub.Register(laptop)

	hub.BroadcastToMember("carol", []byte("ping"))

	if got := string(receive(t, phone.Send)); got != "ping" {
		t.Errorf("phone received %q", got)
	}
	if got := string(receive(t, laptop.Send)); got != "ping" {
		t.Errorf("laptop received %q", got)
	}
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{MemberID: "dave", Send: make(chan []byte, 4)}
	hub.Register(client)
	hub.Unregister(client)

	select {
	case _, open := <-client.Send:
		if open {
			t.Error("expected Send to be closed after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("Send channel never closed")
	}

	// A broadcast after unregistering must not panic or block.
	hub.BroadcastToMember("dave", []byte("late"))
}
