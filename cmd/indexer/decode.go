package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultScope/internal/config"
	"vaultScope/internal/dex"
	"vaultScope/internal/model"
	"vaultScope/internal/storage"
)

func runDecode(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadDecode(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	factories, err := dex.ParseFactories(cfg.Factories)
	if err != nil {
		return err
	}
	var vault common.Address
	if cfg.Vault != "" {
		if !common.IsHexAddress(cfg.Vault) {
			return fmt.Errorf("invalid vault address: %s", cfg.Vault)
		}
		vault = common.HexToAddress(cfg.Vault)
	}

	decoder, err := dex.NewVaultDecoder(dex.DecoderConfig{Vault: vault, Factories: factories})
	if err != nil {
		return err
	}

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	outWriter, err := storage.OpenJSONL(cfg.Out, false)
	if err != nil {
		return err
	}
	defer outWriter.Close()

	errWriter, err := storage.OpenJSONL(cfg.Errors, false)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	logger.Info("decode start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.String("vault", cfg.Vault),
		zap.Int("factories", len(factories)),
	)

	scanner := bufio.NewScanner(inputFile)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var total, decoded, skipped, failed int
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		var record model.LogRecord
		if err := json.Unmarshal(line, &record); err != nil {
			failed++
			_ = errWriter.Write(model.DecodeError{Error: err.Error()})
			continue
		}
		if record.Topic0() == "" {
			failed++
			_ = errWriter.Write(model.NewDecodeError(record, fmt.Errorf("missing topic0")))
			continue
		}

		if record.Removed || !decoder.CanDecode(record.Topic0()) {
			skipped++
			continue
		}

		event, err := decoder.Decode(record)
		if err != nil {
			failed++
			_ = errWriter.Write(model.NewDecodeError(record, err))
			continue
		}

		if err := outWriter.Write(event); err != nil {
			return err
		}
		decoded++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan input: %w", err)
	}

	logger.Info("decode complete",
		zap.Int("total", total),
		zap.Int("decoded", decoded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)

	return nil
}
