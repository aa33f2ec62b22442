package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keepd/keepd/internal/protocol"
	"github.com/keepd/keepd/internal/store"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	engine := store.NewEngine()
	return NewDispatcher(engine, &Stats{}, "./unused.snapshot", func() {})
}

func request(args ...string) protocol.Value {
	out := make(protocol.Array, 0, len(args))
	for _, a := range args {
		out = append(out, protocol.Bulk(a))
	}
	return out
}

func TestDispatchSetGet(t *testing.T) {
	d := newTestDispatcher(t)

	result, sig := d.Dispatch(request("SET", "key1", "value1"))
	assert.Equal(t, signalNone, sig)
	assert.Equal(t, protocol.SimpleString("OK"), result)

	result, _ = d.Dispatch(request("GET", "key1"))
	assert.Equal(t, protocol.Bulk("value1"), result)

	result, _ = d.Dispatch(request("GET", "nonexistent"))
	assert.Equal(t, protocol.Null{}, result)
}

func TestDispatchUnknownCommand(t *testing.T) {
	d := newTestDispatcher(t)
	result, _ := d.Dispatch(request("BOGUS"))
	_, isErr := result.(protocol.Error)
	assert.True(t, isErr)
}

func TestDispatchEmptyRequest(t *testing.T) {
	d := newTestDispatcher(t)
	result, _ := d.Dispatch(protocol.Array{})
	assert.Equal(t, protocol.Error("EMPTY REQUEST"), result)
}

func TestDispatchWrongType(t *testing.T) {
	d := newTestDispatcher(t)
	d.Dispatch(request("SET", "key1", "v"))

	result, _ := d.Dispatch(request("LPUSH", "key1", "a"))
	err, isErr := result.(protocol.Error)
	require.True(t, isErr)
	assert.Contains(t, string(err), "WRONGTYPE")
}

func TestDispatchQuitSignalsQuit(t *testing.T) {
	d := newTestDispatcher(t)
	_, sig := d.Dispatch(request("QUIT"))
	assert.Equal(t, signalQuit, sig)
}

func TestDispatchShutdownInvokesCallback(t *testing.T) {
	engine := store.NewEngine()
	called := false
	d := NewDispatcher(engine, &Stats{}, "./unused.snapshot", func() { called = true })

	_, sig := d.Dispatch(request("SHUTDOWN"))
	assert.Equal(t, signalShutdown, sig)
	assert.True(t, called)
}

func TestDispatchInlineFallback(t *testing.T) {
	d := newTestDispatcher(t)
	inline := protocol.Inline{Tag: 'P', Line: []byte("PING")}
	result, _ := d.Dispatch(inline)
	assert.Equal(t, protocol.SimpleString("PONG"), result)
}

func TestDispatchRecoversPanic(t *testing.T) {
	d := newTestDispatcher(t)
	commandTable["PANICTEST"] = func(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
		panic("boom")
	}
	defer delete(commandTable, "PANICTEST")

	result, sig := d.Dispatch(request("PANICTEST"))
	assert.Equal(t, signalNone, sig)
	err, isErr := result.(protocol.Error)
	require.True(t, isErr)
	assert.Contains(t, string(err), "panic")

	// the dispatcher (and by extension the connection it serves) is
	// still usable after recovering from the panic.
	result, _ = d.Dispatch(request("PING"))
	assert.Equal(t, protocol.SimpleString("PONG"), result)
}

func TestDispatchListCommands(t *testing.T) {
	d := newTestDispatcher(t)
	result, _ := d.Dispatch(request("LPUSH", "mylist", "a", "b", "c"))
	assert.Equal(t, protocol.Integer(3), result)

	for _, want := range []protocol.Value{protocol.Bulk("c"), protocol.Bulk("b"), protocol.Bulk("a")} {
		result, _ = d.Dispatch(request("LPOP", "mylist"))
		assert.Equal(t, want, result)
	}
}

func TestDispatchInfoReportsKeys(t *testing.T) {
	d := newTestDispatcher(t)
	d.Dispatch(request("SET", "a", "1"))
	d.Dispatch(request("SET", "b", "2"))

	result, _ := d.Dispatch(request("INFO"))
	mapping, ok := result.(protocol.Mapping)
	require.True(t, ok)

	found := false
	for _, pair := range mapping {
		if pair.Key == protocol.SimpleString("keys") {
			found = true
			assert.Equal(t, protocol.Integer(2), pair.Value)
		}
	}
	assert.True(t, found)
}
