// FILE: companion/internal/store/memory.go
package store

import (
	"fmt"
	"sync"
)

// Op is one recorded call on a Memory store.
type Op struct {
	Kind  string // "get", "set", "delete", "delete-scope"
	Scope string
	Name  string
	Value any // value written, or nil
}

func (o Op) String() string {
	if o.Value != nil {
		return fmt.Sprintf("%s %s/%s=%v", o.Kind, o.Scope, o.Name, o.Value)
	}
	return fmt.Sprintf("%s %s/%s", o.Kind, o.Scope, o.Name)
}

// Memory is an in-process Store that records every operation.
type Memory struct {
	mu     sync.Mutex
	scopes map[string]map[string]any
	ops    []Op
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{scopes: make(map[string]map[string]any)}
}

func (m *Memory) record(op Op) {
	m.ops = append(m.ops, op)
}

// Ops returns a copy of the recorded operations.
func (m *Memory) Ops() []Op {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]Op, len(m.ops))
	copy(ops, m.ops)
	return ops
}

// ResetOps clears the operation log without touching stored values.
func (m *Memory) ResetOps() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = nil
}

func (m *Memory) lookup(scope, name string) (any, bool) {
	values, ok := m.scopes[scope]
	if !ok {
		return nil, false
	}
	v, ok := values[name]
	return v, ok
}

func (m *Memory) put(scope, name string, v any) {
	values, ok := m.scopes[scope]
	if !ok {
		values = make(map[string]any)
		m.scopes[scope] = values
	}
	values[name] = v
}

func (m *Memory) Int(scope, name string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Op{Kind: "get", Scope: scope, Name: name})

	v, ok := m.lookup(scope, name)
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, false, fmt.Errorf("%w: %s/%s is %T", ErrTypeMismatch, scope, name, v)
	}
	return i, true, nil
}

func (m *Memory) SetInt(scope, name string, value int) error {
	if err := validateName(scope, name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	value = toDWORD(value)
	m.record(Op{Kind: "set", Scope: scope, Name: name, Value: value})
	m.put(scope, name, value)
	return nil
}

func (m *Memory) String(scope, name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Op{Kind: "get", Scope: scope, Name: name})

	v, ok := m.lookup(scope, name)
	if !ok {
		return "", false, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", false, fmt.Errorf("%w: %s/%s is %T", ErrTypeMismatch, scope, name, v)
	}
	return s, true, nil
}

func (m *Memory) SetString(scope, name, value string) error {
	if err := validateName(scope, name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Op{Kind: "set", Scope: scope, Name: name, Value: value})
	m.put(scope, name, value)
	return nil
}

func (m *Memory) Delete(scope, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Op{Kind: "delete", Scope: scope, Name: name})
	if values, ok := m.scopes[scope]; ok {
		delete(values, name)
	}
	return nil
}

func (m *Memory) DeleteScope(scope string) error {
	if scope == GlobalScope {
		return fmt.Errorf("refusing to delete the global scope")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.record(Op{Kind: "delete-scope", Scope: scope})
	delete(m.scopes, scope)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
