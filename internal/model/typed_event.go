package model

import "encoding/json"

// Envelope wraps a decoded event payload with the coordinates of its log.
type Envelope[T any] struct {
	ChainID     uint64     `json:"chain_id"`
	BlockNumber uint64     `json:"block_number"`
	BlockHash   string     `json:"block_hash"`
	TxHash      string     `json:"tx_hash"`
	LogIndex    uint64     `json:"log_index"`
	Address     string     `json:"address"`
	EventName   string     `json:"event_name"`
	Timestamp   uint64     `json:"timestamp"`
	Decoded     T          `json:"decoded"`
	Raw         *RawLogRef `json:"raw,omitempty"`
}

// TypedEvent is what the decoder emits.
type TypedEvent = Envelope[interface{}]

// TypedEventRecord is a TypedEvent read back from JSONL with its payload
// still encoded.
type TypedEventRecord = Envelope[json.RawMessage]

type RawLogRef struct {
	Topic0 string `json:"topic0"`
	Data   string `json:"data"`
}

// NewTypedEvent copies the coordinates of log onto a decoded payload.
func NewTypedEvent(log LogRecord, name string, decoded interface{}) *TypedEvent {
	return &TypedEvent{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash,
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		EventName:   name,
		Timestamp:   log.Timestamp,
		Decoded:     decoded,
		Raw:         &RawLogRef{Topic0: log.Topic0(), Data: log.Data},
	}
}

func (e Envelope[T]) Meta() EventMeta {
	return EventMeta{
		BlockNumber: e.BlockNumber,
		TxHash:      e.TxHash,
		LogIndex:    e.LogIndex,
		Timestamp:   e.Timestamp,
	}
}
