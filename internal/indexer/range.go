package indexer

import "fmt"

// BlockRange is an inclusive block interval.
type BlockRange struct {
	From uint64
	To   uint64
}

// Len is the number of blocks in the range.
func (r BlockRange) Len() uint64 {
	return r.To - r.From + 1
}

// SplitRange cuts [from, to] into consecutive ranges of at most batchSize
// blocks. The last range may be shorter.
func SplitRange(from, to, batchSize uint64) ([]BlockRange, error) {
	if batchSize == 0 {
		return nil, fmt.Errorf("batch size must be greater than zero")
	}
	if to < from {
		return nil, fmt.Errorf("to block %d is before from block %d", to, from)
	}

	ranges := make([]BlockRange, 0, (to-from)/batchSize+1)
	for start := from; ; {
		end := to
		if to-start >= batchSize {
			end = start + batchSize - 1
		}
		ranges = append(ranges, BlockRange{From: start, To: end})
		if end == to {
			return ranges, nil
		}
		start = end + 1
	}
}
