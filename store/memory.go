package store

import (
	"context"
	"sort"
	"sync"

	"budget/models"
)

// Fault 故障注入：返回非 nil 时对应操作失败且不修改数据
type Fault func(table, op string) error

// Memory 内存存储，数据库驱动为 memory 时使用，也用于测试多步写入的补偿
type Memory struct {
	*Store

	mu    sync.Mutex
	fault Fault
}

// NewMemory 创建空的内存存储
func NewMemory() *Memory {
	m := &Memory{}
	m.Store = &Store{
		Categories:   newMemTable("categories", categoryKeys, m.check),
		Accounts:     newMemTable("accounts", accountKeys, m.check),
		Transactions: newMemTable("transactions", transactionKeys, m.check),
		Budgets:      newMemTable("budgets", budgetKeys, m.check),
	}
	return m
}

// SetFault 设置故障注入，nil 清除
func (m *Memory) SetFault(f Fault) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = f
}

func (m *Memory) check(table, op string) error {
	m.mu.Lock()
	f := m.fault
	m.mu.Unlock()
	if f == nil {
		return nil
	}
	return f(table, op)
}

type memTable[T any] struct {
	name   string
	keys   keys[T]
	check  func(table, op string) error
	mu     sync.Mutex
	rows   map[uint]T
	nextID uint
}

func newMemTable[T any](name string, k keys[T], check func(table, op string) error) *memTable[T] {
	return &memTable[T]{name: name, keys: k, check: check, rows: make(map[uint]T), nextID: 1}
}

func (t *memTable[T]) List(_ context.Context, workspaceID uint) ([]T, error) {
	if err := t.check(t.name, "list"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]uint, 0, len(t.rows))
	for id, row := range t.rows {
		if t.keys.workspace(&row) == workspaceID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out, nil
}

func (t *memTable[T]) Get(_ context.Context, workspaceID, id uint) (*T, error) {
	if err := t.check(t.name, "get"); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || t.keys.workspace(&row) != workspaceID {
		return nil, ErrNotFound
	}
	return &row, nil
}

func (t *memTable[T]) Create(_ context.Context, row *T) error {
	if err := t.check(t.name, "create"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.keys.id(row)
	if *id == 0 {
		*id = t.nextID
	}
	if *id >= t.nextID {
		t.nextID = *id + 1
	}
	t.rows[*id] = *row
	return nil
}

func (t *memTable[T]) Update(_ context.Context, row *T) error {
	if err := t.check(t.name, "update"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.keys.id(row)
	cur, ok := t.rows[id]
	if !ok || t.keys.workspace(&cur) != t.keys.workspace(row) {
		return ErrNotFound
	}
	t.rows[id] = *row
	return nil
}

func (t *memTable[T]) Delete(_ context.Context, workspaceID, id uint) error {
	if err := t.check(t.name, "delete"); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || t.keys.workspace(&row) != workspaceID {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

var _ Table[models.Category] = (*memTable[models.Category])(nil)
