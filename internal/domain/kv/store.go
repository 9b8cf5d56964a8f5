package kv

import (
	"context"
	"fmt"
	"strconv"
)

// Store is the persistence substrate the ledger and the gate sit on.
// Implementations bound to a transaction see that transaction's writes.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// GetUint64 returns def when key is missing. A stored value that does not
// parse is reported, not defaulted.
func GetUint64(ctx context.Context, s Store, key string, def uint64) (uint64, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("kv: key %q holds %q: %w", key, raw, err)
	}
	return n, nil
}

func SetUint64(ctx context.Context, s Store, key string, v uint64) error {
	return s.Set(ctx, key, []byte(strconv.FormatUint(v, 10)))
}

func GetBool(ctx context.Context, s Store, key string, def bool) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, fmt.Errorf("kv: key %q holds %q: %w", key, raw, err)
	}
	return b, nil
}

func SetBool(ctx context.Context, s Store, key string, v bool) error {
	return s.Set(ctx, key, []byte(strconv.FormatBool(v)))
}
