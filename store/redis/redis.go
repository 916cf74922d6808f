package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cschleiden/go-resume/store"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	rdb     redis.UniversalClient
	options *options
}

var _ store.Store = (*redisStore)(nil)

func NewRedisStore(client redis.UniversalClient, opts ...option) *redisStore {
	options := &options{}

	for _, opt := range opts {
		opt(options)
	}

	return &redisStore{
		rdb:     client,
		options: options,
	}
}

func (s *redisStore) Get(ctx context.Context, physicalID string) (*store.Record, error) {
	data, err := s.rdb.Get(ctx, recordKey(s.options.KeyPrefix, physicalID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrRecordNotFound
		}

		return nil, fmt.Errorf("getting record: %w", err)
	}

	return unmarshalRecord(data)
}

func (s *redisStore) Put(ctx context.Context, r *store.Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, recordKey(s.options.KeyPrefix, r.PhysicalID), data, 0)
		p.ZAdd(ctx, recordsByUpdate(s.options.KeyPrefix), redis.Z{
			Score:  float64(r.UpdatedAt.UnixMilli()),
			Member: r.PhysicalID,
		})

		return nil
	})
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	return nil
}

func (s *redisStore) Delete(ctx context.Context, physicalID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, recordKey(s.options.KeyPrefix, physicalID))
		p.ZRem(ctx, recordsByUpdate(s.options.KeyPrefix), physicalID)

		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	return nil
}

func (s *redisStore) List(ctx context.Context, count int) ([]*store.Record, error) {
	stop := int64(-1)
	if count > 0 {
		stop = int64(count - 1)
	}

	ids, err := s.rdb.ZRevRange(ctx, recordsByUpdate(s.options.KeyPrefix), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	records := make([]*store.Record, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, recordKey(s.options.KeyPrefix, id))
	}

	values, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}

	for _, v := range values {
		data, ok := v.(string)
		if !ok {
			// Deleted between the two calls
			continue
		}

		r, err := unmarshalRecord([]byte(data))
		if err != nil {
			return nil, err
		}

		records = append(records, r)
	}

	return records, nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}

func unmarshalRecord(data []byte) (*store.Record, error) {
	var r store.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling record: %w", err)
	}

	if r.Attributes == nil {
		r.Attributes = map[string]string{}
	}

	return &r, nil
}
