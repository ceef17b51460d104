package audio

import (
	"container/list"
	"context"
	"sync"
)

// MemoryStore is an in-process LRU bounded by total bytes.
type MemoryStore struct {
	capacity int64
	size     int64

	items    map[string]*list.Element
	eviction *list.List

	mu sync.Mutex
}

type memoryEntry struct {
	key   string
	value []byte
}

// NewMemoryStore returns a store holding at most capacity bytes. A
// capacity of zero or less means unbounded.
func NewMemoryStore(capacity int64) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.items[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	m.eviction.MoveToFront(elem)
	return elem.Value.(*memoryEntry).value, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := int64(len(data))
	if m.capacity > 0 && n > m.capacity {
		return ErrItemTooLarge
	}

	if elem, ok := m.items[key]; ok {
		entry := elem.Value.(*memoryEntry)
		m.size += n - int64(len(entry.value))
		entry.value = data
		m.eviction.MoveToFront(elem)
	} else {
		m.items[key] = m.eviction.PushFront(&memoryEntry{key: key, value: data})
		m.size += n
	}

	for m.capacity > 0 && m.size > m.capacity {
		oldest := m.eviction.Back()
		if oldest == nil {
			break
		}
		entry := oldest.Value.(*memoryEntry)
		m.eviction.Remove(oldest)
		delete(m.items, entry.key)
		m.size -= int64(len(entry.value))
	}
	return nil
}

// Size returns the number of bytes held.
func (m *MemoryStore) Size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Len returns the number of entries held.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
