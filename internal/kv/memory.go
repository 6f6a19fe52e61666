package kv

import (
	"context"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

type kvValue struct {
	value   []byte
	expires time.Time // zero means no expiry
}

func (v kvValue) expired(now time.Time) bool {
	return !v.expires.IsZero() && !v.expires.After(now)
}

type memoryKV struct {
	data *xsync.Map[string, kvValue]
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: xsync.NewMap[string, kvValue]()}
}

func (m *memoryKV) Has(_ context.Context, key string) (bool, error) {
	v, ok := m.data.Load(key)
	if !ok || v.expired(time.Now()) {
		return false, nil
	}
	return true, nil
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.data.Load(key)
	if !ok || v.expired(time.Now()) {
		return nil, nil
	}
	return v.value, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte) error {
	existing, ok := m.data.Load(key)
	expires := time.Time{}
	if ok {
		expires = existing.expires
	}
	m.data.Store(key, kvValue{value: value, expires: expires})
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.data.Delete(key)
	return nil
}

func (m *memoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	v, ok := m.data.Load(key)
	if !ok {
		return nil
	}
	v.expires = time.Now().Add(ttl)
	m.data.Store(key, v)
	return nil
}

func (m *memoryKV) Scan(_ context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	var keys []string
	now := time.Now()
	m.data.Range(func(key string, v kvValue) bool {
		if v.expired(now) {
			return true
		}
		if match == "" || strings.Contains(key, match) {
			keys = append(keys, key)
		}
		return true
	})
	if count > 0 && int64(len(keys)) > count {
		keys = keys[:count]
	}
	return keys, 0, nil
}

func (m *memoryKV) Close() error {
	return nil
}
