package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// PresenceStatus represents a user's online status
type PresenceStatus struct {
	UserID   string    `json:"user_id"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Redis key prefixes for presence
const (
	presenceKeyPrefix = "presence:"       // per-user presence record
	presenceOnlineSet = "presence:online" // set of online user ids
)

// PresenceStore tracks which users are online in Redis. Entries carry a
// TTL so a crashed process cannot leave users online forever.
type PresenceStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceStore(client *goredis.Client, ttl time.Duration) *PresenceStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &PresenceStore{client: client, ttl: ttl}
}

// SetOnline marks a user as online
func (p *PresenceStore) SetOnline(ctx context.Context, userID string) error {
	return p.write(ctx, userID, true)
}

// SetOffline marks a user as offline
func (p *PresenceStore) SetOffline(ctx context.Context, userID string) error {
	return p.write(ctx, userID, false)
}

func (p *PresenceStore) write(ctx context.Context, userID string, online bool) error {
	status := PresenceStatus{
		UserID:   userID,
		IsOnline: online,
		LastSeen: time.Now(),
	}
	data, _ := json.Marshal(status)

	pipe := p.client.Pipeline()
	pipe.Set(ctx, presenceKeyPrefix+userID, data, p.ttl)
	if online {
		pipe.SAdd(ctx, presenceOnlineSet, userID)
	} else {
		pipe.SRem(ctx, presenceOnlineSet, userID)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// OnlineUsers lists the ids of all currently online users.
func (p *PresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	return p.client.SMembers(ctx, presenceOnlineSet).Result()
}
