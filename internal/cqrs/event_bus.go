package cqrs

import (
	"context"
	"log"
	"sync"
)

// Event 完了した状態遷移を表すイベント。0個以上の購読者に配送される
type Event interface {
	EventName() string
}

// EventHandler イベントを処理するハンドラー
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
}

// EventHandlerFunc 関数をEventHandlerとして使うためのアダプタ
type EventHandlerFunc func(ctx context.Context, event Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// EventPublisher イベント発行の能力。ハンドラーにはこのインターフェースだけを渡す
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// EventBus プロセス内の同期イベントバス。
// 同一プロセス内ではat-least-onceで配送するが、プロセスをまたぐ永続化や
// 再配送の保証はない。永続化とイベント発行の間でクラッシュした場合、
// イベントは失われる（既知のリスク）
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]EventHandler
}

// NewEventBus EventBusを作成
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe イベント名に対してハンドラーを購読登録する
func (b *EventBus) Subscribe(name string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], handler)
}

// Publish イベントを全購読者に同期配送する。
// ハンドラーの失敗はログに残すだけで、他の購読者への配送は継続する
func (b *EventBus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.subscribers[event.EventName()]))
	copy(handlers, b.subscribers[event.EventName()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			log.Printf("イベントハンドラーが失敗しました: event=%s, error=%v", event.EventName(), err)
		}
	}
}

var _ EventPublisher = (*EventBus)(nil)
