package storage

import (
	"context"
	"strconv"
	"sync"
)

// Memory is an in-process Client with the same conflict semantics as the
// real backends. Used by tests and as a scratch backend.
type Memory struct {
	mu   sync.Mutex
	docs map[string]memoryDoc

	// FailSaves makes every Save return an error, for exercising the
	// rollback path.
	FailSaves error
}

type memoryDoc struct {
	data    []byte
	version int64
}

func NewMemory() *Memory {
	return &Memory{docs: make(map[string]memoryDoc)}
}

func (m *Memory) Load(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	cp := make([]byte, len(doc.data))
	copy(cp, doc.data)
	return cp, strconv.FormatInt(doc.version, 10), nil
}

func (m *Memory) Save(ctx context.Context, key string, data []byte, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSaves != nil {
		return "", m.FailSaves
	}

	doc, exists := m.docs[key]
	if token == "" {
		if exists {
			return "", ErrConflict
		}
		m.put(key, data, 1)
		return "1", nil
	}
	version, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return "", err
	}
	if !exists || doc.version != version {
		return "", ErrConflict
	}
	m.put(key, data, version+1)
	return strconv.FormatInt(version+1, 10), nil
}

// Put seeds a document directly, bypassing version checks.
func (m *Memory) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	version := int64(1)
	if doc, ok := m.docs[key]; ok {
		version = doc.version + 1
	}
	m.put(key, data, version)
}

func (m *Memory) put(key string, data []byte, version int64) {
	cp := make([]byte, len(data))
	copy(cp, data)
	m.docs[key] = memoryDoc{data: cp, version: version}
}
