package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"interviewgw/internal/model"
)

const (
	keyPrefix       = "interviewgw:interview:"
	maxWatchRetries = 5
)

// RedisStore keeps interviews as JSON values with a TTL refreshed on write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStore(ctx context.Context, url string, ttl time.Duration, log *zap.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("connected to redis session store", zap.String("addr", opts.Addr), zap.Duration("ttl", ttl))
	return &RedisStore{client: client, ttl: ttl, log: log}, nil
}

func key(id string) string { return keyPrefix + id }

func (s *RedisStore) Create(ctx context.Context, iv *Interview) error {
	b, err := json.Marshal(iv)
	if err != nil {
		return fmt.Errorf("failed to marshal interview: %w", err)
	}
	if err := s.client.Set(ctx, key(iv.ID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store interview: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Interview, error) {
	b, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load interview: %w", err)
	}
	return decode(b)
}

func (s *RedisStore) AppendQuestion(ctx context.Context, id string, turn Turn) (string, error) {
	var qid string
	err := s.update(ctx, id, func(iv *Interview) error {
		qid = iv.appendTurn(turn)
		return nil
	})
	if err != nil {
		return "", err
	}
	return qid, nil
}

func (s *RedisStore) RecordAnswer(ctx context.Context, id, questionID, answer string, fb *model.AnswerFeedback) error {
	at := time.Now()
	return s.update(ctx, id, func(iv *Interview) error {
		return iv.recordAnswer(questionID, answer, fb, at)
	})
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// update applies fn in an optimistic WATCH/MULTI transaction, retrying when
// a concurrent writer touched the key.
func (s *RedisStore) update(ctx context.Context, id string, fn func(*Interview) error) error {
	k := key(id)
	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, k).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		iv, err := decode(b)
		if err != nil {
			return err
		}
		if err := fn(iv); err != nil {
			return err
		}
		out, err := json.Marshal(iv)
		if err != nil {
			return fmt.Errorf("failed to marshal interview: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, k)
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debug("interview update conflict, retrying", zap.String("interview_id", id), zap.Int("attempt", i+1))
			continue
		}
		return err
	}
	return fmt.Errorf("interview %s: too many concurrent updates", id)
}

func decode(b []byte) (*Interview, error) {
	var iv Interview
	if err := json.Unmarshal(b, &iv); err != nil {
		return nil, fmt.Errorf("failed to decode interview: %w", err)
	}
	return &iv, nil
}
