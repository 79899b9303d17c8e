// Package clickhouse exports immutable swap and price records for analytics.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"vaultScope/internal/model"
)

const swapsTable = `
CREATE TABLE IF NOT EXISTS vault_swaps (
	event_time   DateTime,
	id           String,
	pool_id      String,
	token_in     String,
	token_out    String,
	amount_in    String,
	amount_out   String,
	value_usd    String,
	fee_usd      String,
	block_number UInt64,
	tx_hash      String
) ENGINE = ReplacingMergeTree ORDER BY (pool_id, id)`

const pricesTable = `
CREATE TABLE IF NOT EXISTS vault_token_prices (
	event_time    DateTime,
	id            String,
	pool_id       String,
	asset         String,
	pricing_asset String,
	price         String,
	price_usd     String,
	block_number  UInt64
) ENGINE = ReplacingMergeTree ORDER BY (asset, id)`

// SwapRow is a vault_swaps row.
type SwapRow struct {
	EventTime   time.Time
	ID          string
	PoolID      string
	TokenIn     string
	TokenOut    string
	AmountIn    string
	AmountOut   string
	ValueUSD    string
	FeeUSD      string
	BlockNumber uint64
	TxHash      string
}

// PriceRow is a vault_token_prices row.
type PriceRow struct {
	EventTime    time.Time
	ID           string
	PoolID       string
	Asset        string
	PricingAsset string
	Price        string
	PriceUSD     string
	BlockNumber  uint64
}

// Rows splits records into table rows, ignoring kinds that are not exported.
func Rows(records []model.Entity) ([]SwapRow, []PriceRow) {
	var swaps []SwapRow
	var prices []PriceRow
	for _, r := range records {
		switch v := r.(type) {
		case *model.Swap:
			swaps = append(swaps, SwapRow{
				EventTime:   time.Unix(int64(v.Timestamp), 0).UTC(),
				ID:          v.ID,
				PoolID:      v.PoolID,
				TokenIn:     v.TokenIn,
				TokenOut:    v.TokenOut,
				AmountIn:    v.TokenAmountIn.String(),
				AmountOut:   v.TokenAmountOut.String(),
				ValueUSD:    v.ValueUSD.String(),
				FeeUSD:      v.FeeUSD.String(),
				BlockNumber: v.BlockNumber,
				TxHash:      v.Tx,
			})
		case *model.TokenPrice:
			prices = append(prices, PriceRow{
				EventTime:    time.Unix(int64(v.Timestamp), 0).UTC(),
				ID:           v.ID,
				PoolID:       v.PoolID,
				Asset:        v.Asset,
				PricingAsset: v.PricingAsset,
				Price:        v.Price.String(),
				PriceUSD:     v.PriceUSD.String(),
				BlockNumber:  v.BlockNumber,
			})
		}
	}
	return swaps, prices
}

// Writer inserts records synchronously with retries.
type Writer struct {
	conn       driver.Conn
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

func NewWriter(conn driver.Conn, maxRetries int, backoff time.Duration, logger *zap.Logger) *Writer {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{conn: conn, maxRetries: maxRetries, backoff: backoff, logger: logger}
}

// EnsureSchema creates the export tables when missing.
func (w *Writer) EnsureSchema(ctx context.Context) error {
	for _, ddl := range []string{swapsTable, pricesTable} {
		if err := w.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create clickhouse table: %w", err)
		}
	}
	return nil
}

func (w *Writer) Publish(ctx context.Context, records []model.Entity) error {
	swaps, prices := Rows(records)
	if len(swaps) > 0 {
		if err := w.retry(ctx, func() error { return w.insertSwaps(ctx, swaps) }); err != nil {
			return fmt.Errorf("insert %d swaps: %w", len(swaps), err)
		}
	}
	if len(prices) > 0 {
		if err := w.retry(ctx, func() error { return w.insertPrices(ctx, prices) }); err != nil {
			return fmt.Errorf("insert %d prices: %w", len(prices), err)
		}
	}
	return nil
}

func (w *Writer) Health(ctx context.Context) error {
	return w.conn.Ping(ctx)
}

func (w *Writer) retry(ctx context.Context, fn func() error) error {
	backoff := w.backoff
	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if attempt == w.maxRetries {
			break
		}
		w.logger.Warn("clickhouse insert failed, retrying", zap.Int("attempt", attempt+1), zap.Error(lastErr))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return lastErr
}

func (w *Writer) insertSwaps(ctx context.Context, rows []SwapRow) error {
	batch, err := w.conn.PrepareBatch(ctx, `INSERT INTO vault_swaps (
		event_time, id, pool_id, token_in, token_out, amount_in, amount_out,
		value_usd, fee_usd, block_number, tx_hash
	)`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r.EventTime, r.ID, r.PoolID, r.TokenIn, r.TokenOut, r.AmountIn, r.AmountOut,
			r.ValueUSD, r.FeeUSD, r.BlockNumber, r.TxHash); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}

func (w *Writer) insertPrices(ctx context.Context, rows []PriceRow) error {
	batch, err := w.conn.PrepareBatch(ctx, `INSERT INTO vault_token_prices (
		event_time, id, pool_id, asset, pricing_asset, price, price_usd, block_number
	)`)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := batch.Append(r.EventTime, r.ID, r.PoolID, r.Asset, r.PricingAsset, r.Price, r.PriceUSD, r.BlockNumber); err != nil {
			_ = batch.Abort()
			return err
		}
	}
	return batch.Send()
}
