// Package server assembles the protocol codec and the key-space engine
// into a connection-handling dispatcher and a bounded-concurrency TCP
// listener.
package server

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/keepd/keepd/internal/protocol"
	"github.com/keepd/keepd/internal/snapshot"
	"github.com/keepd/keepd/internal/store"
)

// signal reports a control-flow outcome of dispatching one request, as
// opposed to an ordinary command error.
type signal int

const (
	signalNone signal = iota
	signalQuit
	signalShutdown
)

// Dispatcher resolves one decoded request frame to a command and
// invokes the engine. It holds no per-connection state; one Dispatcher
// is shared by every connection a Listener serves.
type Dispatcher struct {
	engine          *store.Engine
	stats           *Stats
	defaultSnapshot string
	requestShutdown func()
}

func NewDispatcher(engine *store.Engine, stats *Stats, defaultSnapshotPath string, requestShutdown func()) *Dispatcher {
	return &Dispatcher{
		engine:          engine,
		stats:           stats,
		defaultSnapshot: defaultSnapshotPath,
		requestShutdown: requestShutdown,
	}
}

// Dispatch normalizes, resolves and executes one request frame,
// returning the response value to encode and the control signal (if
// any) the caller must act on. A command error is returned as a
// protocol.Error result.
func (d *Dispatcher) Dispatch(frame protocol.Value) (result protocol.Value, sig signal) {
	args, err := normalize(frame)
	if err != nil {
		d.stats.commandFailed()
		return protocol.Error(err.Error()), signalNone
	}
	if len(args) == 0 {
		d.stats.commandFailed()
		d.stats.commandProcessed()
		return protocol.Error("EMPTY REQUEST"), signalNone
	}

	nameBytes, err := argBytes(args[0])
	if err != nil {
		d.stats.commandFailed()
		d.stats.commandProcessed()
		return protocol.Errorf("UNKNOWN COMMAND"), signalNone
	}
	name := strings.ToUpper(string(nameBytes))
	rest := args[1:]

	handler, ok := commandTable[name]
	if !ok {
		d.stats.commandFailed()
		d.stats.commandProcessed()
		return protocol.Errorf("UNKNOWN COMMAND: %s", name), signalNone
	}

	value, sig, err := d.invoke(handler, rest)
	d.stats.commandProcessed()
	if err != nil {
		d.stats.commandFailed()
		return protocol.Error(err.Error()), sig
	}
	return value, sig
}

// invoke runs handler and recovers a panic into an ordinary command
// error, so one bad command can't take the whole connection (or
// process) down with it.
func (d *Dispatcher) invoke(handler handlerFunc, args []protocol.Value) (result protocol.Value, sig signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, sig, err = nil, signalNone, fmt.Errorf("panic: %v", r)
		}
	}()
	return handler(d, args)
}

// normalize turns a decoded frame into a command's argument list: a
// frame that is already an array is used as-is; an inline fallback
// token is whitespace-split into bulk-string arguments so a
// netcat-style prompt stays usable.
func normalize(frame protocol.Value) ([]protocol.Value, error) {
	switch v := frame.(type) {
	case protocol.Array:
		return []protocol.Value(v), nil
	case protocol.Inline:
		// v.Line already carries the leading tag byte (Decode includes
		// it so Encode can echo the frame back verbatim); whitespace
		// split it straight from there.
		fields := bytes.Fields(v.Line)
		args := make([]protocol.Value, 0, len(fields))
		for _, f := range fields {
			args = append(args, protocol.Bulk(f))
		}
		return args, nil
	default:
		// A lone scalar frame (e.g. a bare `+PING`) is treated as a
		// single-element request.
		return []protocol.Value{frame}, nil
	}
}

type handlerFunc func(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error)

var commandTable = map[string]handlerFunc{
	"SET":      cmdSet,
	"GET":      cmdGet,
	"DELETE":   cmdDelete,
	"DEL":      cmdDelete,
	"EXISTS":   cmdExists,
	"LPUSH":    cmdLPush,
	"LPOP":     cmdLPop,
	"HSET":     cmdHSet,
	"HGET":     cmdHGet,
	"SADD":     cmdSAdd,
	"SMEMBERS": cmdSMembers,
	"EXPIRE":   cmdExpire,
	"FLUSHALL": cmdFlushAll,
	"SAVE":     cmdSave,
	"RESTORE":  cmdRestore,
	"INFO":     cmdInfo,
	"QUIT":     cmdQuit,
	"SHUTDOWN": cmdShutdown,
	"PING":     cmdPing,
}

func arity(command string, args []protocol.Value, want int) error {
	if len(args) != want {
		return store.ArityError(command)
	}
	return nil
}

func minArity(command string, args []protocol.Value, min int) error {
	if len(args) < min {
		return store.ArityError(command)
	}
	return nil
}

func cmdSet(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("SET", args, 2); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	val, err := valueToScalar(args[1])
	if err != nil {
		return nil, signalNone, err
	}
	d.engine.Set(key, val)
	return protocol.OK(), signalNone, nil
}

func cmdGet(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("GET", args, 1); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	val, ok, err := d.engine.Get(key)
	if err != nil {
		return nil, signalNone, err
	}
	if !ok {
		return protocol.Null{}, signalNone, nil
	}
	return scalarToValue(val), signalNone, nil
}

func cmdDelete(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("DELETE", args, 1); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	return protocol.Integer(d.engine.Delete(key)), signalNone, nil
}

func cmdExists(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("EXISTS", args, 1); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	return protocol.Integer(d.engine.Exists(key)), signalNone, nil
}

func cmdLPush(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := minArity("LPUSH", args, 2); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	values, err := scalarsOf(args[1:])
	if err != nil {
		return nil, signalNone, err
	}
	n, err := d.engine.LPush(key, values...)
	if err != nil {
		return nil, signalNone, err
	}
	return protocol.Integer(n), signalNone, nil
}

func cmdLPop(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("LPOP", args, 1); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	val, ok, err := d.engine.LPop(key)
	if err != nil {
		return nil, signalNone, err
	}
	if !ok {
		return protocol.Null{}, signalNone, nil
	}
	return scalarToValue(val), signalNone, nil
}

func cmdHSet(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("HSET", args, 3); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	field, err := argString(args[1])
	if err != nil {
		return nil, signalNone, err
	}
	val, err := valueToScalar(args[2])
	if err != nil {
		return nil, signalNone, err
	}
	n, err := d.engine.HSet(key, field, val)
	if err != nil {
		return nil, signalNone, err
	}
	return protocol.Integer(n), signalNone, nil
}

func cmdHGet(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("HGET", args, 2); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	field, err := argString(args[1])
	if err != nil {
		return nil, signalNone, err
	}
	val, ok, err := d.engine.HGet(key, field)
	if err != nil {
		return nil, signalNone, err
	}
	if !ok {
		return protocol.Null{}, signalNone, nil
	}
	return scalarToValue(val), signalNone, nil
}

func cmdSAdd(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := minArity("SADD", args, 2); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	members, err := scalarsOf(args[1:])
	if err != nil {
		return nil, signalNone, err
	}
	n, err := d.engine.SAdd(key, members...)
	if err != nil {
		return nil, signalNone, err
	}
	return protocol.Integer(n), signalNone, nil
}

func cmdSMembers(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("SMEMBERS", args, 1); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	members, err := d.engine.SMembers(key)
	if err != nil {
		return nil, signalNone, err
	}
	out := make(protocol.SetValue, 0, len(members))
	for _, m := range members {
		out = append(out, scalarToValue(m))
	}
	return out, signalNone, nil
}

func cmdExpire(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("EXPIRE", args, 2); err != nil {
		return nil, signalNone, err
	}
	key, err := argString(args[0])
	if err != nil {
		return nil, signalNone, err
	}
	secStr, err := argString(args[1])
	if err != nil {
		return nil, signalNone, err
	}
	seconds, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return nil, signalNone, fmt.Errorf("invalid EXPIRE seconds: %s", secStr)
	}
	return protocol.Integer(d.engine.Expire(key, seconds)), signalNone, nil
}

func cmdFlushAll(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("FLUSHALL", args, 0); err != nil {
		return nil, signalNone, err
	}
	d.engine.FlushAll()
	return protocol.OK(), signalNone, nil
}

func cmdSave(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	path := d.defaultSnapshot
	if len(args) == 1 {
		p, err := argString(args[0])
		if err != nil {
			return nil, signalNone, err
		}
		path = p
	} else if len(args) > 1 {
		return nil, signalNone, store.ArityError("SAVE")
	}
	if err := snapshot.Save(d.engine, path); err != nil {
		return nil, signalNone, err
	}
	return protocol.OK(), signalNone, nil
}

func cmdRestore(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	path := d.defaultSnapshot
	if len(args) == 1 {
		p, err := argString(args[0])
		if err != nil {
			return nil, signalNone, err
		}
		path = p
	} else if len(args) > 1 {
		return nil, signalNone, store.ArityError("RESTORE")
	}
	ok, err := snapshot.Restore(d.engine, path)
	if err != nil {
		return nil, signalNone, err
	}
	if !ok {
		return protocol.Integer(0), signalNone, nil
	}
	return protocol.Integer(1), signalNone, nil
}

func cmdInfo(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if err := arity("INFO", args, 0); err != nil {
		return nil, signalNone, err
	}
	snap := d.stats.Snapshot()
	return protocol.Mapping{
		{Key: protocol.SimpleString("active_connections"), Value: protocol.Integer(snap.ActiveConnections)},
		{Key: protocol.SimpleString("connections"), Value: protocol.Integer(snap.Connections)},
		{Key: protocol.SimpleString("commands_processed"), Value: protocol.Integer(snap.CommandsProcessed)},
		{Key: protocol.SimpleString("command_errors"), Value: protocol.Integer(snap.CommandErrors)},
		{Key: protocol.SimpleString("keys"), Value: protocol.Integer(d.engine.Keys())},
	}, signalNone, nil
}

func cmdQuit(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	return protocol.OK(), signalQuit, nil
}

func cmdShutdown(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if d.requestShutdown != nil {
		d.requestShutdown()
	}
	return protocol.OK(), signalShutdown, nil
}

func cmdPing(d *Dispatcher, args []protocol.Value) (protocol.Value, signal, error) {
	if len(args) == 0 {
		return protocol.SimpleString("PONG"), signalNone, nil
	}
	return args[0], signalNone, nil
}

func scalarsOf(args []protocol.Value) ([]store.Scalar, error) {
	out := make([]store.Scalar, 0, len(args))
	for _, a := range args {
		s, err := valueToScalar(a)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
