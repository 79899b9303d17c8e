package model

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Entity is a persisted aggregate addressed by kind and id.
type Entity interface {
	EntityKind() string
	EntityID() string
}

// AddressKey normalizes an address for use in entity ids.
func AddressKey(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// HashKey normalizes a hash for use in entity ids.
func HashKey(h common.Hash) string {
	return h.Hex()
}

// JoinID builds a composite id from its parts.
func JoinID(parts ...string) string {
	return strings.Join(parts, "-")
}

// EventID is the id of a record produced by a single log.
func EventID(txHash string, logIndex uint64) string {
	return strings.ToLower(txHash) + strconv.FormatUint(logIndex, 10)
}

// EventMeta carries the log coordinates every handler needs.
type EventMeta struct {
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Timestamp   uint64 `json:"timestamp"`
}

// ID returns the composite id for records created by this event.
func (m EventMeta) ID() string {
	return EventID(m.TxHash, m.LogIndex)
}
