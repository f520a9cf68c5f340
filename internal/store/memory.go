package store

import (
	"context"
	"reflect"
	"sync"
)

type memCollection struct {
	order []string
	docs  map[string]map[string]any
}

// Memory is an in-process Store. Reads return documents in insertion order,
// which stands in for the remote store's fetch order.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string]*memCollection)}
}

func cloneFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = value
	}
	return out
}

func (m *Memory) collection(name string) *memCollection {
	coll, ok := m.collections[name]
	if !ok {
		coll = &memCollection{docs: make(map[string]map[string]any)}
		m.collections[name] = coll
	}
	return coll
}

func (m *Memory) All(ctx context.Context, collection string) ([]Record, error) {
	return m.Where(ctx, collection, "", nil)
}

func (m *Memory) Where(ctx context.Context, collection, field string, value any) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[collection]
	if !ok {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(coll.order))
	for _, id := range coll.order {
		doc := coll.docs[id]
		if field != "" && !reflect.DeepEqual(doc[field], value) {
			continue
		}
		records = append(records, Record{ID: id, Fields: cloneFields(doc)})
	}
	return records, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	coll, ok := m.collections[collection]
	if !ok {
		return Record{}, ErrNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Fields: cloneFields(doc)}, nil
}

func (m *Memory) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll := m.collection(collection)
	if _, exists := coll.docs[id]; !exists {
		coll.order = append(coll.order, id)
	}
	coll.docs[id] = cloneFields(fields)
	return nil
}

func (m *Memory) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	doc, ok := coll.docs[id]
	if !ok {
		return ErrNotFound
	}
	for key, value := range fields {
		doc[key] = value
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := coll.docs[id]; !ok {
		return ErrNotFound
	}
	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}
