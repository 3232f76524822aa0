// Package events 变更事件：每个写操作发出一条 {workspace, type, details}，只追加、不回读。
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type 事件类型
type Type string

const (
	CategoryCreated    Type = "category.created"
	CategoryUpdated    Type = "category.updated"
	CategoryArchived   Type = "category.archived"
	AccountCreated     Type = "account.created"
	AccountUpdated     Type = "account.updated"
	AccountArchived    Type = "account.archived"
	TransactionCreated Type = "transaction.created"
	TransactionUpdated Type = "transaction.updated"
	TransactionDeleted Type = "transaction.deleted"
	BudgetCreated      Type = "budget.created"
	BudgetUpdated      Type = "budget.updated"
	BudgetDeleted      Type = "budget.deleted"
)

// Fact 一条事件
type Fact struct {
	EventID   string                 `json:"event_id"`
	Workspace uint                   `json:"workspace"`
	Type      Type                   `json:"type"`
	Details   map[string]interface{} `json:"details"`
	At        time.Time              `json:"at"`
}

// New 生成事件，分配唯一 ID
func New(workspace uint, typ Type, details map[string]interface{}) Fact {
	return Fact{
		EventID:   uuid.NewString(),
		Workspace: workspace,
		Type:      typ,
		Details:   details,
		At:        time.Now(),
	}
}

// Sink 事件出口。Emit 不返回错误，失败由实现自行记录
type Sink interface {
	Emit(ctx context.Context, f Fact)
}

// Nop 丢弃全部事件
type Nop struct{}

func (Nop) Emit(context.Context, Fact) {}

// Multi 依次发给多个 sink
type Multi []Sink

func (m Multi) Emit(ctx context.Context, f Fact) {
	for _, s := range m {
		s.Emit(ctx, f)
	}
}

// Recorder 记录收到的事件，用于测试
type Recorder struct {
	mu    sync.Mutex
	facts []Fact
}

func (r *Recorder) Emit(_ context.Context, f Fact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facts = append(r.facts, f)
}

// Facts 已收到的事件副本
func (r *Recorder) Facts() []Fact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Fact(nil), r.facts...)
}

// Types 已收到的事件类型，按顺序
func (r *Recorder) Types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, 0, len(r.facts))
	for _, f := range r.facts {
		out = append(out, f.Type)
	}
	return out
}

// Reset 清空
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facts = nil
}
