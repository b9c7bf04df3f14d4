package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/PxPatel/matching-core/internal/types"
)

const defaultMaxTrades = 1000

// RedisTradeStore keeps the most recent trades in a sorted set scored by
// trade sequence, trimming the oldest entries on every write.
type RedisTradeStore struct {
	client    *redis.Client
	key       string
	maxTrades int
}

// NewRedisTradeStore creates a new Redis-backed trade store
func NewRedisTradeStore(cfg RedisConfig) (*RedisTradeStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}
	return newTradeStore(client, cfg), nil
}

func newTradeStore(client *redis.Client, cfg RedisConfig) *RedisTradeStore {
	return &RedisTradeStore{
		client:    client,
		key:       tradesKey(cfg.Symbol),
		maxTrades: retainLimit(cfg.MaxTrades),
	}
}

// retainLimit keeps a non-positive limit from trimming the whole set
func retainLimit(maxTrades int) int {
	if maxTrades < 1 {
		return defaultMaxTrades
	}
	return maxTrades
}

func tradesKey(symbol string) string {
	if symbol == "" {
		return "trades:recent"
	}
	return "trades:" + symbol + ":recent"
}

func (s *RedisTradeStore) Save(trade types.Trade) error {
	return s.SaveBatch([]types.Trade{trade})
}

func (s *RedisTradeStore) SaveBatch(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	members, err := encodeTrades(trades)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, s.key, members...)

	// Trim to keep only last N trades
	pipe.ZRemRangeByRank(ctx, s.key, 0, int64(-s.maxTrades-1))

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	// Lowest ranks are oldest; take the last limit entries
	results, err := s.client.ZRange(ctx, s.key, int64(-limit), -1).Result()
	if err != nil {
		return nil, err
	}
	return decodeTrades(results), nil
}

// LastSeq reads the score of the highest ranked member
func (s *RedisTradeStore) LastSeq() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	newest, err := s.client.ZRevRangeWithScores(ctx, s.key, 0, 0).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read last trade seq: %w", err)
	}
	if len(newest) == 0 {
		return 0, nil
	}
	return uint64(newest[0].Score), nil
}

func (s *RedisTradeStore) Close() error {
	return s.client.Close()
}

func encodeTrades(trades []types.Trade) ([]redis.Z, error) {
	members := make([]redis.Z, 0, len(trades))
	for _, trade := range trades {
		data, err := json.Marshal(trade)
		if err != nil {
			return nil, fmt.Errorf("failed to encode trade %d: %w", trade.Seq, err)
		}
		members = append(members, redis.Z{
			Score:  float64(trade.Seq),
			Member: data,
		})
	}
	return members, nil
}

// decodeTrades skips entries that do not parse
func decodeTrades(results []string) []types.Trade {
	trades := make([]types.Trade, 0, len(results))
	for _, data := range results {
		var trade types.Trade
		if err := json.Unmarshal([]byte(data), &trade); err != nil {
			continue
		}
		trades = append(trades, trade)
	}
	return trades
}
