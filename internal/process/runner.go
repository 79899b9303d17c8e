// Package process feeds decoded events from a JSONL file into the handler.
package process

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"vaultScope/internal/handler"
	"vaultScope/internal/model"
)

// Stats counts what happened to the input lines.
type Stats struct {
	Total   int
	Applied int
	Skipped int
	Dropped int
	Failed  int
}

// Runner applies typed events in file order.
type Runner struct {
	dispatcher *handler.Dispatcher
	logger     *zap.Logger
}

func NewRunner(dispatcher *handler.Dispatcher, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{dispatcher: dispatcher, logger: logger}
}

// Run processes the typed events JSONL file at inputPath.
func (r *Runner) Run(ctx context.Context, inputPath string) (Stats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return r.Consume(ctx, file)
}

// Consume processes typed events read from in. Unparseable lines are
// counted and skipped; handler errors stop the run.
func (r *Runner) Consume(ctx context.Context, in io.Reader) (Stats, error) {
	if r.dispatcher == nil {
		return Stats{}, fmt.Errorf("dispatcher is nil")
	}
	cursor, err := r.dispatcher.LoadCursor(ctx)
	if err != nil {
		return Stats{}, err
	}
	if cursor != nil {
		r.logger.Info("resume from cursor", zap.Uint64("block_number", cursor.BlockNumber), zap.Uint64("log_index", cursor.LogIndex))
	}

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var stats Stats
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		stats.Total++

		var record model.TypedEventRecord
		if err := json.Unmarshal(line, &record); err != nil {
			stats.Failed++
			r.logger.Warn("decode typed event", zap.Int("line", stats.Total), zap.Error(err))
			continue
		}

		outcome, err := r.dispatcher.Handle(ctx, record)
		if err != nil {
			return stats, err
		}
		switch outcome {
		case handler.Applied:
			stats.Applied++
		case handler.Skipped:
			stats.Skipped++
		case handler.Dropped:
			stats.Dropped++
		}
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("scan input: %w", err)
	}

	r.logger.Info("process complete",
		zap.Int("total", stats.Total),
		zap.Int("applied", stats.Applied),
		zap.Int("skipped", stats.Skipped),
		zap.Int("dropped", stats.Dropped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}
