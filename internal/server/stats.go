package server

import "sync/atomic"

// Stats tracks the aggregate counters INFO reports: active
// connections, total connections accepted, commands processed, and
// command errors. Atomics are used rather than a mutex since these
// are incremented far more often than INFO reads them.
type Stats struct {
	activeConnections int64
	connections       int64
	commandsProcessed int64
	commandErrors     int64
}

func (s *Stats) connectionOpened() {
	atomic.AddInt64(&s.activeConnections, 1)
	atomic.AddInt64(&s.connections, 1)
}

func (s *Stats) connectionClosed() {
	atomic.AddInt64(&s.activeConnections, -1)
}

func (s *Stats) commandProcessed() {
	atomic.AddInt64(&s.commandsProcessed, 1)
}

func (s *Stats) commandFailed() {
	atomic.AddInt64(&s.commandErrors, 1)
}

// Snapshot is a point-in-time copy of the counters, safe to hand to
// INFO's mapping encoder.
type Snapshot struct {
	ActiveConnections int64
	Connections       int64
	CommandsProcessed int64
	CommandErrors     int64
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		ActiveConnections: atomic.LoadInt64(&s.activeConnections),
		Connections:       atomic.LoadInt64(&s.connections),
		CommandsProcessed: atomic.LoadInt64(&s.commandsProcessed),
		CommandErrors:     atomic.LoadInt64(&s.commandErrors),
	}
}
