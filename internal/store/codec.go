package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"shopos/backend/internal/domain"
)

const SchemaVersion = 2

type envelope[T any] struct {
	Version int `json:"version"`
	Items   []T `json:"items"`
}

func Encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(envelope[T]{Version: SchemaVersion, Items: items})
}

// decode reads a current envelope, or hands a bare array to the legacy
// migration. The boolean reports whether a migration ran.
func decode[T any](body []byte, legacy func([]byte) ([]T, error)) ([]T, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("%w: empty document", ErrCorrupt)
	}
	if trimmed[0] == '[' {
		items, err := legacy(trimmed)
		if err != nil {
			return nil, false, fmt.Errorf("%w: legacy document: %v", ErrCorrupt, err)
		}
		return items, true, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Version != SchemaVersion {
		return nil, false, fmt.Errorf("%w: unsupported schema version %d", ErrCorrupt, env.Version)
	}
	if env.Items == nil {
		env.Items = []T{}
	}
	return env.Items, false, nil
}

func DecodeProducts(body []byte) ([]domain.Product, bool, error) {
	return decode(body, migrateProducts)
}

func DecodeSales(body []byte) ([]domain.Sale, bool, error) {
	return decode(body, migrateSales)
}

func DecodeDebtors(body []byte) ([]domain.Debtor, bool, error) {
	return decode(body, migrateDebtors)
}

func DecodeCustomers(body []byte) ([]string, bool, error) {
	return decode(body, migrateCustomers)
}
