package model

// DecodeError is one line of the decode stage's error output.
type DecodeError struct {
	ChainID     uint64 `json:"chain_id,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	TxHash      string `json:"tx_hash,omitempty"`
	LogIndex    uint64 `json:"log_index,omitempty"`
	Address     string `json:"address,omitempty"`
	Topic0      string `json:"topic0,omitempty"`
	Error       string `json:"error"`
}

// NewDecodeError ties err to the log it came from.
func NewDecodeError(log LogRecord, err error) DecodeError {
	return DecodeError{
		ChainID:     log.ChainID,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.LogIndex,
		Address:     log.Address,
		Topic0:      log.Topic0(),
		Error:       err.Error(),
	}
}
