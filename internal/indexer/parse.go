package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseAddresses converts hex addresses, skipping blanks and duplicates.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	return parseUnique(inputs, func(s string) (common.Address, error) {
		if !common.IsHexAddress(s) {
			return common.Address{}, fmt.Errorf("invalid address: %s", s)
		}
		return common.HexToAddress(s), nil
	})
}

// ParseTopic0 converts 32-byte hex event signatures, skipping blanks and
// duplicates.
func ParseTopic0(inputs []string) ([]common.Hash, error) {
	return parseUnique(inputs, func(s string) (common.Hash, error) {
		data, err := hexutil.Decode(s)
		if err != nil {
			return common.Hash{}, fmt.Errorf("invalid topic0: %s", s)
		}
		if len(data) != common.HashLength {
			return common.Hash{}, fmt.Errorf("invalid topic0 length: %s", s)
		}
		return common.BytesToHash(data), nil
	})
}

func parseUnique[T comparable](inputs []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(inputs))
	seen := make(map[T]struct{}, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		v, err := parse(input)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
