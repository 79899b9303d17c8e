// Package handler routes decoded events to the engine, one handler per
// event kind, and commits each event as a unit.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vaultScope/internal/entity"
	"vaultScope/internal/ledger"
	"vaultScope/internal/metrics"
	"vaultScope/internal/model"
	"vaultScope/internal/pricing"
	"vaultScope/internal/pubsub"
	"vaultScope/internal/swap"
)

// DefaultCursorName identifies the processing cursor.
const DefaultCursorName = "process"

var (
	// ErrMalformedEvent marks payloads that cannot be interpreted.
	ErrMalformedEvent = errors.New("malformed event")
	// ErrUnsupportedEvent marks events without a handler.
	ErrUnsupportedEvent = errors.New("unsupported event")
	// ErrPoolUnavailable marks pool creations whose contract state cannot be read.
	ErrPoolUnavailable = errors.New("pool state unavailable")
)

// Outcome is what happened to one event.
type Outcome string

const (
	Applied Outcome = metrics.OutcomeApplied
	Skipped Outcome = metrics.OutcomeSkipped
	Dropped Outcome = metrics.OutcomeDropped
)

// Options configures a Dispatcher.
type Options struct {
	CursorName string
	Sinks      []pubsub.Broadcaster
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// Dispatcher applies events strictly in order. It is not safe for
// concurrent use.
type Dispatcher struct {
	resolver   *entity.Resolver
	oracle     *pricing.Oracle
	ledger     *ledger.Ledger
	swaps      *swap.Processor
	sinks      []pubsub.Broadcaster
	metrics    *metrics.Metrics
	logger     *zap.Logger
	cursorName string
	cursor     *model.Cursor
}

func NewDispatcher(resolver *entity.Resolver, oracle *pricing.Oracle, opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := opts.CursorName
	if name == "" {
		name = DefaultCursorName
	}
	l := ledger.New(oracle, logger)
	return &Dispatcher{
		resolver:   resolver,
		oracle:     oracle,
		ledger:     l,
		swaps:      swap.NewProcessor(l, oracle, logger),
		sinks:      opts.Sinks,
		metrics:    opts.Metrics,
		logger:     logger,
		cursorName: name,
	}
}

// LoadCursor reads the persisted cursor. Events it covers are skipped.
func (d *Dispatcher) LoadCursor(ctx context.Context) (*model.Cursor, error) {
	tx := d.resolver.Begin(ctx)
	c, err := entity.Load[model.Cursor](tx, d.cursorName)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}
	d.cursor = c
	return c, nil
}

// Handle applies one event. Dropped events still advance the cursor; any
// returned error is fatal and leaves the store untouched for that event.
func (d *Dispatcher) Handle(ctx context.Context, rec model.TypedEventRecord) (Outcome, error) {
	if d.cursor.Covers(rec.BlockNumber, rec.LogIndex) {
		d.metrics.ObserveEvent(rec.EventName, metrics.OutcomeSkipped)
		return Skipped, nil
	}

	outcome := Applied
	tx := d.resolver.Begin(ctx)
	samples, err := d.apply(tx, rec)
	if err != nil {
		if !recoverable(err) {
			return "", fmt.Errorf("%s %s:%d: %w", rec.EventName, rec.TxHash, rec.LogIndex, err)
		}
		d.logger.Warn("event dropped",
			zap.String("event", rec.EventName),
			zap.String("tx_hash", rec.TxHash),
			zap.Uint64("log_index", rec.LogIndex),
			zap.Error(err),
		)
		outcome = Dropped
		samples = 0
		tx = d.resolver.Begin(ctx)
	}

	cursor := &model.Cursor{ID: d.cursorName, BlockNumber: rec.BlockNumber, LogIndex: rec.LogIndex}
	tx.Save(cursor)
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit %s %s:%d: %w", rec.EventName, rec.TxHash, rec.LogIndex, err)
	}
	d.cursor = cursor

	d.publish(ctx, tx.Created())
	d.metrics.ObserveEvent(rec.EventName, string(outcome))
	d.metrics.AddPriceSamples(samples)
	d.metrics.SetBlock(rec.BlockNumber)
	return outcome, nil
}

func recoverable(err error) bool {
	return errors.Is(err, entity.ErrPoolNotFound) ||
		errors.Is(err, swap.ErrTokenNotInPool) ||
		errors.Is(err, ErrMalformedEvent) ||
		errors.Is(err, ErrUnsupportedEvent) ||
		errors.Is(err, ErrPoolUnavailable)
}

func (d *Dispatcher) publish(ctx context.Context, records []model.Entity) {
	if len(records) == 0 {
		return
	}
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, records); err != nil {
			d.logger.Warn("publish records failed", zap.Int("records", len(records)), zap.Error(err))
		}
	}
}

func (d *Dispatcher) apply(tx *entity.Tx, rec model.TypedEventRecord) (int, error) {
	meta := rec.Meta()
	switch rec.EventName {
	case model.EventPoolCreated:
		var data model.PoolCreatedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		return 0, d.handlePoolCreated(tx, meta, data)
	case model.EventTransfer:
		var data model.TransferEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		ev, err := transferFromPayload(meta, rec.Address, data)
		if err != nil {
			return 0, err
		}
		return 0, d.ledger.ApplyTransfer(tx, ev)
	case model.EventSwapFeePercentageChanged:
		var data model.SwapFeePercentageChangedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		return 0, d.handleSwapFeeChanged(tx, meta, rec.Address, data)
	case model.EventAmpUpdateStarted:
		var data model.AmpUpdateStartedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		return 0, d.handleAmpUpdateStarted(tx, meta, rec.Address, data)
	case model.EventAmpUpdateStopped:
		var data model.AmpUpdateStoppedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		return 0, d.handleAmpUpdateStopped(tx, meta, rec.Address, data)
	case model.EventSwap:
		var data model.SwapEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		ev, err := swapFromPayload(meta, data)
		if err != nil {
			return 0, err
		}
		res, err := d.swaps.Process(tx, ev)
		return res.PriceSamples, err
	case model.EventPoolBalanceChanged:
		var data model.PoolBalanceChangedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		ev, err := balanceChangeFromPayload(meta, data)
		if err != nil {
			return 0, err
		}
		return 0, d.ledger.ApplyBalanceChange(tx, ev)
	case model.EventPoolBalanceManaged:
		var data model.PoolBalanceManagedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		ev, err := balanceManageFromPayload(meta, data)
		if err != nil {
			return 0, err
		}
		return 0, d.ledger.ApplyBalanceManage(tx, ev)
	case model.EventInternalBalanceChanged:
		var data model.InternalBalanceChangedEventData
		if err := decodePayload(rec, &data); err != nil {
			return 0, err
		}
		ev, err := internalBalanceFromPayload(data)
		if err != nil {
			return 0, err
		}
		return 0, d.ledger.ApplyInternalBalanceChange(tx, ev)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedEvent, rec.EventName)
	}
}

func decodePayload(rec model.TypedEventRecord, dst interface{}) error {
	if len(rec.Decoded) == 0 {
		return fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}
	if err := json.Unmarshal(rec.Decoded, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}
