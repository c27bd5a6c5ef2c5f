package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event is the payload published for each unlock.
type Event struct {
	EventID     string       `json:"eventId"`
	Type        string       `json:"type"`
	UserID      string       `json:"userId"`
	Achievement Notification `json:"achievement"`
	UnlockedAt  time.Time    `json:"unlockedAt"`
}

const EventAchievementUnlocked = "achievement_unlocked"

type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes unlock events to a Redis channel so connected
// clients (toasts, chat bots) can react to them.
type RedisNotifier struct {
	rdb     publisher
	channel string
	now     func() time.Time
}

func NewRedisNotifier(rdb publisher, channel string) *RedisNotifier {
	if channel == "" {
		channel = "achievements"
	}
	return &RedisNotifier{rdb: rdb, channel: channel, now: time.Now}
}

func (n *RedisNotifier) Notify(ctx context.Context, userID string, note Notification) error {
	raw, err := json.Marshal(Event{
		EventID:     uuid.NewString(),
		Type:        EventAchievementUnlocked,
		UserID:      userID,
		Achievement: note,
		UnlockedAt:  n.now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := n.rdb.Publish(ctx, n.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", n.channel, err)
	}
	return nil
}

// DialRedis connects and pings the server.
func DialRedis(addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
