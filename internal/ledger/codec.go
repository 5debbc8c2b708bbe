package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spsworld03/sps-bill-brew/internal/domain"
)

var (
	ErrNotArray   = errors.New("ledger payload is not a JSON array")
	ErrNullRecord = errors.New("ledger payload contains a null record")
)

// Encode serializes the whole ledger in the durable slot layout. An empty
// ledger encodes as [].
func Encode(records []domain.BillRecord) ([]byte, error) {
	if records == nil {
		records = []domain.BillRecord{}
	}
	return json.Marshal(records)
}

// Decode parses a durable slot payload. Anything other than a JSON array of
// bill objects is rejected so a foreign value in the slot never replaces the
// ledger.
func Decode(data []byte) ([]domain.BillRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, err
	}

	records := make([]domain.BillRecord, len(elems))
	for i, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			return nil, fmt.Errorf("record %d: %w", i, ErrNullRecord)
		}
		if err := json.Unmarshal(elem, &records[i]); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}
