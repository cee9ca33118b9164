package session

import (
	"context"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type InmemoryStore struct {
	mu   sync.Mutex
	docs map[Key][]byte

	// stop willl be closed when Close() is called
	stop chan struct{}
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		docs: make(map[Key][]byte),
		stop: make(chan struct{}),
	}
}

func (i *InmemoryStore) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.isRunning() {
		close(i.stop)
	}

	i.docs = make(map[Key][]byte)
	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key Key, field string, value interface{}) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return ErrClosed
	}

	return i.set(key, field, value)
}

func (i *InmemoryStore) set(key Key, field string, value interface{}) error {
	doc, err := sjson.SetBytes(i.docs[key], field, value)
	if err != nil {
		return err
	}

	i.docs[key] = doc
	return nil
}

// Get returns the raw JSON value of field, or nil if it is not set.
func (i *InmemoryStore) Get(ctx context.Context, key Key, field string) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return nil, ErrClosed
	}

	result := gjson.GetBytes(i.docs[key], field)
	if !result.Exists() {
		return nil, nil
	}

	return []byte(result.Raw), nil
}

// Incr adds delta to the integer at field, treating a missing field as zero,
// and returns the new value.
func (i *InmemoryStore) Incr(ctx context.Context, key Key, field string, delta int64) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return 0, ErrClosed
	}

	value := gjson.GetBytes(i.docs[key], field).Int() + delta
	if err := i.set(key, field, value); err != nil {
		return 0, err
	}

	return value, nil
}

func (i *InmemoryStore) Delete(ctx context.Context, key Key) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return ErrClosed
	}

	delete(i.docs, key)
	return nil
}

func (i *InmemoryStore) Backup(key Key) ([]byte, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	doc := i.docs[key]
	if len(doc) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte(nil), doc...), nil
}

func (i *InmemoryStore) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return len(i.docs)
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
