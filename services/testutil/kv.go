package testutil

import (
	"context"
	"sync"
	"time"
)

// Operation names accepted by MemoryKV.Fail.
const (
	OpSet        = "set"
	OpGet        = "get"
	OpSetAdd     = "sadd"
	OpSetMembers = "smembers"
	OpExpire     = "expire"
)

type kvEntry struct {
	value    []byte
	expireAt time.Time
}

type setEntry struct {
	members  map[string]struct{}
	expireAt time.Time
}

// MemoryKV is an in-process stand-in for the Redis-backed tracking store. It
// honours TTLs against an injectable clock and can be told to fail any
// operation.
type MemoryKV struct {
	mu     sync.Mutex
	now    func() time.Time
	values map[string]kvEntry
	sets   map[string]*setEntry

	// Fail makes the named operation return the mapped error.
	Fail map[string]error
}

func NewMemoryKV(now func() time.Time) *MemoryKV {
	if now == nil {
		now = time.Now
	}
	return &MemoryKV{
		now:    now,
		values: make(map[string]kvEntry),
		sets:   make(map[string]*setEntry),
		Fail:   make(map[string]error),
	}
}

func (m *MemoryKV) expired(at time.Time) bool {
	return !at.IsZero() && !m.now().Before(at)
}

func (m *MemoryKV) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[OpSet]; err != nil {
		return err
	}
	m.values[key] = kvEntry{value: append([]byte(nil), value...), expireAt: m.deadline(ttl)}
	return nil
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[OpGet]; err != nil {
		return nil, false, err
	}
	e, ok := m.values[key]
	if !ok || m.expired(e.expireAt) {
		delete(m.values, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *MemoryKV) SetAdd(_ context.Context, setKey, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[OpSetAdd]; err != nil {
		return err
	}
	s, ok := m.sets[setKey]
	if !ok || m.expired(s.expireAt) {
		s = &setEntry{members: make(map[string]struct{})}
		m.sets[setKey] = s
	}
	s.members[member] = struct{}{}
	return nil
}

func (m *MemoryKV) SetMembers(_ context.Context, setKey string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[OpSetMembers]; err != nil {
		return nil, err
	}
	s, ok := m.sets[setKey]
	if !ok || m.expired(s.expireAt) {
		return nil, nil
	}
	out := make([]string, 0, len(s.members))
	for member := range s.members {
		out = append(out, member)
	}
	return out, nil
}

func (m *MemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.Fail[OpExpire]; err != nil {
		return err
	}
	if e, ok := m.values[key]; ok {
		e.expireAt = m.deadline(ttl)
		m.values[key] = e
	}
	if s, ok := m.sets[key]; ok {
		s.expireAt = m.deadline(ttl)
	}
	return nil
}

// TTL returns the remaining lifetime of key, or 0 when it has none.
func (m *MemoryKV) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.values[key]; ok && !e.expireAt.IsZero() {
		return e.expireAt.Sub(m.now())
	}
	if s, ok := m.sets[key]; ok && !s.expireAt.IsZero() {
		return s.expireAt.Sub(m.now())
	}
	return 0
}

// Raw returns the stored bytes for key ignoring expiry.
func (m *MemoryKV) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.values[key]
	return e.value, ok
}

// Put stores value without going through Set's failure injection.
func (m *MemoryKV) Put(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = kvEntry{value: append([]byte(nil), value...), expireAt: m.deadline(ttl)}
}
