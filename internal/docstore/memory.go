package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is a map-backed Store used by tests and single-process runs.
// Documents are held as decoded JSON trees; subscribers are notified
// synchronously after each write.
type Memory struct {
	mu     sync.RWMutex
	docs   map[Collection]map[string]map[string]any
	subs   map[string]map[int]ChangeFunc
	nextID int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs: map[Collection]map[string]map[string]any{
			Users:    {},
			Kingdoms: {},
		},
		subs: map[string]map[int]ChangeFunc{},
	}
}

func subKey(coll Collection, id string) string {
	return string(coll) + "/" + id
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, coll Collection, id string) (Snapshot, error) {
	m.mu.RLock()
	doc, ok := m.docs[coll][id]
	m.mu.RUnlock()
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal %s/%s: %w", coll, id, err)
	}
	return Snapshot{ID: id, Data: data}, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, coll Collection, id string, doc any) error {
	tree, err := toTree(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.docs[coll][id] = tree
	m.mu.Unlock()
	m.notify(coll, id)
	return nil
}

// Apply implements Store.
func (m *Memory) Apply(_ context.Context, updates ...DocUpdate) error {
	m.mu.Lock()
	if err := m.applyLocked(updates); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	for _, u := range updates {
		m.notify(u.Collection, u.ID)
	}
	return nil
}

// ApplyIfAbsent implements Store.
func (m *Memory) ApplyIfAbsent(_ context.Context, guard Guard, updates ...DocUpdate) error {
	m.mu.Lock()
	doc, ok := m.docs[guard.Collection][guard.ID]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", guard.Collection, guard.ID, ErrNotFound)
	}
	if pathPresent(doc, guard.Path) {
		m.mu.Unlock()
		return ErrGuardExists
	}
	if err := m.applyLocked(updates); err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()
	for _, u := range updates {
		m.notify(u.Collection, u.ID)
	}
	return nil
}

func (m *Memory) applyLocked(updates []DocUpdate) error {
	// Validate every target first so a failed batch changes nothing.
	for _, u := range updates {
		if _, ok := m.docs[u.Collection][u.ID]; !ok {
			return fmt.Errorf("%s/%s: %w", u.Collection, u.ID, ErrNotFound)
		}
	}
	for _, u := range updates {
		doc := m.docs[u.Collection][u.ID]
		for _, f := range u.Fields {
			if err := applyField(doc, f); err != nil {
				return fmt.Errorf("%s/%s: %w", u.Collection, u.ID, err)
			}
		}
	}
	return nil
}

// Subscribe implements Store.
func (m *Memory) Subscribe(_ context.Context, coll Collection, id string, fn ChangeFunc) (func(), error) {
	key := subKey(coll, id)
	m.mu.Lock()
	if m.subs[key] == nil {
		m.subs[key] = map[int]ChangeFunc{}
	}
	token := m.nextID
	m.nextID++
	m.subs[key][token] = fn
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		delete(m.subs[key], token)
		m.mu.Unlock()
	}
	return cancel, nil
}

func (m *Memory) notify(coll Collection, id string) {
	snap, err := m.Get(context.Background(), coll, id)
	if err != nil {
		return
	}
	m.mu.RLock()
	fns := make([]ChangeFunc, 0, len(m.subs[subKey(coll, id)]))
	for _, fn := range m.subs[subKey(coll, id)] {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func toTree(doc any) (map[string]any, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	return tree, nil
}

func applyField(doc map[string]any, f Field) error {
	if len(f.Path) == 0 {
		return fmt.Errorf("empty field path")
	}
	parent := doc
	for _, seg := range f.Path[:len(f.Path)-1] {
		child, ok := parent[seg].(map[string]any)
		if !ok {
			if f.Remove {
				return nil
			}
			return fmt.Errorf("missing parent container %q in path %v", seg, f.Path)
		}
		parent = child
	}
	leaf := f.Path[len(f.Path)-1]
	if f.Remove {
		delete(parent, leaf)
		return nil
	}
	// Round-trip through JSON so stored values match what the Postgres
	// store would hold.
	data, err := json.Marshal(f.Value)
	if err != nil {
		return fmt.Errorf("marshal field %v: %w", f.Path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal field %v: %w", f.Path, err)
	}
	parent[leaf] = v
	return nil
}

func pathPresent(doc map[string]any, path []string) bool {
	var cur any = doc
	for _, seg := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return false
		}
		cur, ok = obj[seg]
		if !ok {
			return false
		}
	}
	return cur != nil
}
