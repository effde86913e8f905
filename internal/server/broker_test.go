package server

import (
	"context"
	"encoding/json"
	"testing"
)

func TestBrokerPublishSubscribe(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("group:g1")
	defer b.Unsubscribe("group:g1", ch)
	other := b.Subscribe("group:g2")
	defer b.Unsubscribe("group:g2", other)

	b.Publish("group:g1", ChatEvent{Type: "group", Text: "hello"})

	select {
	case data := <-ch:
		var ev ChatEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if ev.Text != "hello" {
			t.Errorf("text = %q, want hello", ev.Text)
		}
	default:
		t.Fatal("expected an event on the subscribed topic")
	}

	select {
	case <-other:
		t.Fatal("event leaked to an unrelated topic")
	default:
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("group:g1")
	b.Unsubscribe("group:g1", ch)

	b.Publish("group:g1", ChatEvent{Type: "group", Text: "after"})

	select {
	case <-ch:
		t.Fatal("expected no delivery after unsubscribe")
	default:
	}
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroker()

	ch := b.Subscribe("group:g1")
	defer b.Unsubscribe("group:g1", ch)

	// The channel buffers 16 events; anything beyond is dropped, never blocks.
	for i := 0; i < 40; i++ {
		b.Publish("group:g1", ChatEvent{Type: "group", Text: "flood"})
	}

	count := 0
	for {
		select {
		case <-ch:
			count++
			continue
		default:
		}
		break
	}
	if count != 16 {
		t.Errorf("expected the buffer's worth of events, got %d", count)
	}
}

func TestBrokerMessengerRoutesTopics(t *testing.T) {
	b := NewBroker()
	m := NewBrokerMessenger(b)

	group := b.Subscribe("group:g1")
	defer b.Unsubscribe("group:g1", group)
	player := b.Subscribe("player:p1")
	defer b.Unsubscribe("player:p1", player)

	ctx := context.Background()
	if err := m.Broadcast(ctx, "g1", "to everyone"); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if err := m.Whisper(ctx, "p1", "just for you"); err != nil {
		t.Fatalf("whisper: %v", err)
	}

	var ev ChatEvent
	select {
	case data := <-group:
		json.Unmarshal(data, &ev)
		if ev.Type != "group" || ev.Text != "to everyone" {
			t.Errorf("unexpected group event: %+v", ev)
		}
	default:
		t.Fatal("expected a group event")
	}

	select {
	case data := <-player:
		json.Unmarshal(data, &ev)
		if ev.Type != "whisper" || ev.Text != "just for you" {
			t.Errorf("unexpected whisper event: %+v", ev)
		}
	default:
		t.Fatal("expected a whisper event")
	}

	// The whisper must never appear on the group topic.
	select {
	case <-group:
		t.Fatal("whisper leaked to the group topic")
	default:
	}
}
