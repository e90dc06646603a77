package cqrs

import (
	"context"
	"fmt"
	"sync"
)

// Command 状態を変更するユースケースへの指示。ちょうど1つのハンドラーに配送される
type Command interface {
	CommandName() string
}

// Query 読み取り専用のリクエスト。ちょうど1つのハンドラーに配送される
type Query interface {
	QueryName() string
}

// CommandHandler コマンドを処理するハンドラー
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (interface{}, error)
}

// CommandHandlerFunc 関数をCommandHandlerとして使うためのアダプタ
type CommandHandlerFunc func(ctx context.Context, cmd Command) (interface{}, error)

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) (interface{}, error) {
	return f(ctx, cmd)
}

// QueryHandler クエリを処理するハンドラー
type QueryHandler interface {
	Handle(ctx context.Context, query Query) (interface{}, error)
}

// QueryHandlerFunc 関数をQueryHandlerとして使うためのアダプタ
type QueryHandlerFunc func(ctx context.Context, query Query) (interface{}, error)

func (f QueryHandlerFunc) Handle(ctx context.Context, query Query) (interface{}, error) {
	return f(ctx, query)
}

// CommandBus コマンド名でハンドラーを引き、同期的に実行するバス。
// リトライもキューイングも行わない。ハンドラーの結果と失敗をそのまま返す
type CommandBus struct {
	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// NewCommandBus CommandBusを作成
func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[string]CommandHandler)}
}

// Register コマンド名に対してハンドラーを登録する。
// 同じ名前への二重登録は設定ミスなのでpanicする（起動時に静的に登録される前提）
func (b *CommandBus) Register(name string, handler CommandHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[name]; ok {
		panic(fmt.Sprintf("cqrs: コマンドハンドラーが二重登録されています: %s", name))
	}
	b.handlers[name] = handler
}

// Dispatch コマンドを登録済みハンドラーに配送する。
// 未登録のコマンドは設定エラーとして即時失敗する
func (b *CommandBus) Dispatch(ctx context.Context, cmd Command) (interface{}, error) {
	b.mu.RLock()
	handler, ok := b.handlers[cmd.CommandName()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cqrs: コマンドハンドラーが登録されていません: %s", cmd.CommandName())
	}
	return handler.Handle(ctx, cmd)
}

// QueryBus クエリ名でハンドラーを引き、同期的に実行するバス
type QueryBus struct {
	mu       sync.RWMutex
	handlers map[string]QueryHandler
}

// NewQueryBus QueryBusを作成
func NewQueryBus() *QueryBus {
	return &QueryBus{handlers: make(map[string]QueryHandler)}
}

// Register クエリ名に対してハンドラーを登録する
func (b *QueryBus) Register(name string, handler QueryHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[name]; ok {
		panic(fmt.Sprintf("cqrs: クエリハンドラーが二重登録されています: %s", name))
	}
	b.handlers[name] = handler
}

// Execute クエリを登録済みハンドラーに配送し、結果を返す
func (b *QueryBus) Execute(ctx context.Context, query Query) (interface{}, error) {
	b.mu.RLock()
	handler, ok := b.handlers[query.QueryName()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cqrs: クエリハンドラーが登録されていません: %s", query.QueryName())
	}
	return handler.Handle(ctx, query)
}
