// Package notify publishes round-lifecycle events over Redis pub/sub so
// companion services (bots, push gateways) can react to what the engine did.
// The engine itself never publishes; the HTTP layer does, after a successful
// transition.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventRoundStarted     = "round_started"
	EventVotingOpened     = "voting_opened"
	EventRoundRevealed    = "round_revealed"
	EventTieBreakRequired = "tie_break_required"
	EventMovieSelected    = "movie_selected"
	EventMovieWatched     = "movie_watched"
)

// Event is the JSON payload published per lifecycle transition.
type Event struct {
	Type    string    `json:"type"`
	ClubID  string    `json:"clubId"`
	RoundID string    `json:"roundId,omitempty"`
	ActorID string    `json:"actorId,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher fans events out on the club's channel. A nil *Publisher is a
// valid no-op, so callers never need to branch on whether Redis is
// configured.
type Publisher struct {
	client *redis.Client
}

func New(redisURL string) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Publisher{client: client}, nil
}

// NewWithClient wraps an existing Redis client, mainly for tests.
func NewWithClient(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Channel returns the pub/sub channel for a club.
func Channel(clubID string) string {
	return "matinee:events:" + clubID
}

// Publish sends the event. Delivery is best effort: failures are logged and
// never fail the request that triggered them.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.client == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("notify: marshal event: %v", err)
		return
	}
	if err := p.client.Publish(ctx, Channel(event.ClubID), payload).Err(); err != nil {
		log.Printf("notify: publish %s to %s: %v", event.Type, Channel(event.ClubID), err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
