package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/rowcount-backend/internal/platform/logger"
	"github.com/yungbote/rowcount-backend/internal/services"
)

const defaultKeyPrefix = "rowcount:quick:"

type QuickCounterStoreOptions struct {
	KeyPrefix string
	// TTL expires idle sessions. Zero keeps them forever.
	TTL time.Duration
}

type quickCounterStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

// NewQuickCounterStore keeps quick counter sessions as JSON values, one key
// per session.
func NewQuickCounterStore(log *logger.Logger, rdb *goredis.Client, opts QuickCounterStoreOptions) (services.QuickCounterStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	prefix := strings.TrimSpace(opts.KeyPrefix)
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &quickCounterStore{
		log:    log.With("service", "RedisQuickCounterStore"),
		rdb:    rdb,
		prefix: prefix,
		ttl:    opts.TTL,
	}, nil
}

func (s *quickCounterStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *quickCounterStore) Load(ctx context.Context, sessionID string) (*services.QuickCounterState, error) {
	raw, err := s.rdb.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get quick counter: %w", err)
	}
	var st services.QuickCounterState
	if err := json.Unmarshal(raw, &st); err != nil {
		// A corrupt value is dropped so the session starts over.
		s.log.Warn("bad quick counter payload", "session_id", sessionID, "error", err)
		return nil, nil
	}
	return &st, nil
}

func (s *quickCounterStore) Save(ctx context.Context, sessionID string, st *services.QuickCounterState) error {
	if st == nil {
		return nil
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set quick counter: %w", err)
	}
	return nil
}

func (s *quickCounterStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del quick counter: %w", err)
	}
	return nil
}

// Len counts live sessions with SCAN so large keyspaces are not blocked.
func (s *quickCounterStore) Len(ctx context.Context) (int, error) {
	var (
		cursor uint64
		n      int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+"*", 200).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan quick counters: %w", err)
		}
		n += len(keys)
		cursor = next
		if cursor == 0 {
			return n, nil
		}
	}
}
