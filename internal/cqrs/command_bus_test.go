package cqrs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCommand struct{ name string }

func (c testCommand) CommandName() string { return c.name }

type testQuery struct{ name string }

func (q testQuery) QueryName() string { return q.name }

func TestCommandBusDispatch(t *testing.T) {
	bus := NewCommandBus()

	var received Command
	bus.Register("DoSomething", CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		received = cmd
		return "done", nil
	}))

	result, err := bus.Dispatch(context.Background(), testCommand{name: "DoSomething"})
	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, "DoSomething", received.CommandName())
}

func TestCommandBusUnregistered(t *testing.T) {
	bus := NewCommandBus()

	_, err := bus.Dispatch(context.Background(), testCommand{name: "Unknown"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown")
}

func TestCommandBusDuplicateRegistrationPanics(t *testing.T) {
	bus := NewCommandBus()
	handler := CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
		return nil, nil
	})

	bus.Register("DoSomething", handler)
	assert.Panics(t, func() {
		bus.Register("DoSomething", handler)
	})
}

func TestQueryBusExecute(t *testing.T) {
	bus := NewQueryBus()

	bus.Register("FindSomething", QueryHandlerFunc(func(ctx context.Context, query Query) (interface{}, error) {
		return 42, nil
	}))

	result, err := bus.Execute(context.Background(), testQuery{name: "FindSomething"})
	require.NoError(t, err)
	assert.Equal(t, 42, result)

	_, err = bus.Execute(context.Background(), testQuery{name: "Unknown"})
	assert.Error(t, err)
}
