package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Storage keys.
const (
	KeyProgress    = "investiq-progress"
	KeySettings    = "investiq-settings"
	KeyAIQuestions = "investiq-ai-questions"
)

// KV is a string-keyed blob store.
type KV interface {
	// Get returns the value for key, with ok false when it is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// sqlKV implements KV on the kv table.
type sqlKV struct {
	drv *entsql.Driver
}

func (k *sqlKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("value").
		From(b.Table(KvTable.Name)).
		Where(entsql.EQ("key", key)).
		Query()

	var rows entsql.Rows
	if err := k.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, false, fmt.Errorf("query %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, false, rows.Err()
	}
	var value string
	if err := rows.Scan(&value); err != nil {
		return nil, false, fmt.Errorf("scan %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (k *sqlKV) Set(ctx context.Context, key string, value []byte) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(KvTable.Name).
		Columns("key", "value", "updated_at").
		Values(key, string(value), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := k.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (k *sqlKV) Delete(ctx context.Context, key string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(KvTable.Name).
		Where(entsql.EQ("key", key)).
		Query()
	if err := k.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// MemKV is an in-memory KV for tests and throwaway sessions.
type MemKV struct {
	mu   sync.Mutex
	data map[string][]byte

	// SetErr, when non-nil, is returned by every Set.
	SetErr error
}

// NewMemKV returns an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

func (m *MemKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemKV) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
