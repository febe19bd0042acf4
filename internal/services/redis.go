package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chachabrian/busbooking-backend/internal/logging"
	"github.com/redis/go-redis/v9"
)

const (
	SeatUpdatesChannel = "seat:updates"

	SeatStatusBooked   = "booked"
	SeatStatusReleased = "released"
)

// SeatUpdate announces seats taken or released on a route for one travel day.
type SeatUpdate struct {
	RouteID    uint    `json:"routeId"`
	TravelDate string  `json:"travelDate"`
	Seats      []int64 `json:"seats"`
	Status     string  `json:"status"`
	Timestamp  int64   `json:"timestamp"`
}

// Topic is the hub key for the route/day the update belongs to.
func (u SeatUpdate) Topic() string {
	return SeatTopic(u.RouteID, u.TravelDate)
}

func SeatTopic(routeID uint, travelDate string) string {
	return fmt.Sprintf("route:%d:%s", routeID, travelDate)
}

// InitRedis parses url and checks the connection
func InitRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// RedisSeatPublisher publishes seat updates so every API instance can fan
// them out to its own websocket clients.
type RedisSeatPublisher struct {
	client *redis.Client
}

func NewRedisSeatPublisher(client *redis.Client) *RedisSeatPublisher {
	return &RedisSeatPublisher{client: client}
}

func (p *RedisSeatPublisher) PublishSeatUpdate(ctx context.Context, update SeatUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, SeatUpdatesChannel, data).Err()
}

// RelaySeatUpdates forwards published seat updates into hub until ctx ends.
func RelaySeatUpdates(ctx context.Context, client *redis.Client, hub *Hub) error {
	pubsub := client.Subscribe(ctx, SeatUpdatesChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SeatUpdatesChannel, err)
	}

	log := logging.FromContext(ctx)
	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var update SeatUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
				log.WithError(err).Warn("dropping malformed seat update")
				continue
			}
			hub.SendSeatUpdate(update)
		}
	}
}
