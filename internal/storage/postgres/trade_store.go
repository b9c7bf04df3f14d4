package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PxPatel/matching-core/internal/types"
)

const insertTradeQuery = `
	INSERT INTO trades (symbol, seq, buy_order_id, buy_price, sell_order_id, sell_price, quantity, aggressor)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (symbol, seq) DO NOTHING
`

const recentTradesQuery = `
	SELECT seq, buy_order_id, buy_price, sell_order_id, sell_price, quantity, aggressor
	FROM (
		SELECT * FROM trades
		WHERE symbol = $1
		ORDER BY seq DESC
		LIMIT $2
	) recent
	ORDER BY seq ASC
`

const lastSeqQuery = `
	SELECT COALESCE(MAX(seq), 0) FROM trades WHERE symbol = $1
`

// PostgresTradeStore implements TradeStore using PostgreSQL. Re-publishing
// a sequence number is ignored, so retries are safe. Engines writing to an
// existing table must start numbering after LastSeq.
type PostgresTradeStore struct {
	pool   *pgxpool.Pool
	symbol string
}

// NewPostgresTradeStore creates a new PostgreSQL-backed trade store
func NewPostgresTradeStore(cfg PostgresConfig) (*PostgresTradeStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresTradeStore{pool: pool, symbol: cfg.Symbol}, nil
}

func (s *PostgresTradeStore) Save(trade types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.pool.Exec(ctx, insertTradeQuery, tradeArgs(s.symbol, trade)...)
	return err
}

func (s *PostgresTradeStore) SaveBatch(trades []types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := s.pool.SendBatch(ctx, buildInsertBatch(s.symbol, trades))
	defer results.Close()

	// Execute all batched queries
	for i := range trades {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at seq %d: %w", trades[i].Seq, err)
		}
	}

	return nil
}

func (s *PostgresTradeStore) GetRecent(limit int) ([]types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, recentTradesQuery, s.symbol, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]types.Trade, 0, limit)
	for rows.Next() {
		var trade types.Trade
		var aggressor int16
		err := rows.Scan(
			&trade.Seq, &trade.BuyOrderID, &trade.BuyPrice,
			&trade.SellOrderID, &trade.SellPrice, &trade.Quantity, &aggressor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trade.Aggressor = types.SideType(aggressor)
		trades = append(trades, trade)
	}

	return trades, rows.Err()
}

func (s *PostgresTradeStore) LastSeq() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var last int64
	if err := s.pool.QueryRow(ctx, lastSeqQuery, s.symbol).Scan(&last); err != nil {
		return 0, fmt.Errorf("failed to read last trade seq: %w", err)
	}
	return uint64(last), nil
}

func (s *PostgresTradeStore) Close() error {
	s.pool.Close()
	return nil
}

func tradeArgs(symbol string, trade types.Trade) []any {
	return []any{
		symbol, int64(trade.Seq),
		int64(trade.BuyOrderID), trade.BuyPrice,
		int64(trade.SellOrderID), trade.SellPrice,
		trade.Quantity, int16(trade.Aggressor),
	}
}

func buildInsertBatch(symbol string, trades []types.Trade) *pgx.Batch {
	batch := &pgx.Batch{}
	for _, trade := range trades {
		batch.Queue(insertTradeQuery, tradeArgs(symbol, trade)...)
	}
	return batch
}
