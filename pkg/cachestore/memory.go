package cachestore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mau.fi/util/exsync"
)

// MemoryStore keeps cache entries in process memory. Entries are copied on the way
// in and out so callers cannot mutate stored bodies.
type MemoryStore struct {
	entries *exsync.Map[string, Entry]
	// writeLock guards mutations; Prune holds it for the whole pass.
	writeLock sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: exsync.NewMap[string, Entry]()}
}

func (m *MemoryStore) Lookup(_ context.Context, key string) (*Entry, bool, error) {
	entry, ok := m.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	entry.Body = slices.Clone(entry.Body)
	return &entry, true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, body []byte, mediaType string) (*Entry, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("key is required")
	}
	entry := Entry{
		Key:       key,
		Body:      slices.Clone(body),
		MediaType: mediaType,
		UpdatedAt: time.Now().UnixMilli(),
	}
	m.writeLock.Lock()
	m.entries.Set(key, entry)
	m.writeLock.Unlock()
	out := entry
	out.Body = slices.Clone(entry.Body)
	return &out, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.writeLock.Lock()
	m.entries.Delete(key)
	m.writeLock.Unlock()
	return nil
}

func (m *MemoryStore) Prune(_ context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	var removed int64
	m.writeLock.Lock()
	defer m.writeLock.Unlock()
	for key, entry := range m.entries.CopyData() {
		if entry.UpdatedAt < cutoff {
			m.entries.Delete(key)
			removed++
		}
	}
	return removed, nil
}
