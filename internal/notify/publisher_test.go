package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestPublishRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	publisher := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer publisher.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel("club_1"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	publisher.Publish(ctx, Event{
		Type:    EventRoundRevealed,
		ClubID:  "club_1",
		RoundID: "rnd_1",
		ActorID: "mem_1",
	})

	select {
	case msg := <-sub.Channel():
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		if event.Type != EventRoundRevealed || event.ClubID != "club_1" || event.RoundID != "rnd_1" {
			t.Fatalf("unexpected event: %+v", event)
		}
		if event.At.IsZero() {
			t.Fatal("expected publish to stamp the event time")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNilPublisherIsNoOp(t *testing.T) {
	var publisher *Publisher
	// Must not panic.
	publisher.Publish(context.Background(), Event{Type: EventRoundStarted, ClubID: "club_1"})
	if err := publisher.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
