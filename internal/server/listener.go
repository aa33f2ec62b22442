package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/keepd/keepd/internal/logging"
	"github.com/keepd/keepd/internal/protocol"
	"github.com/keepd/keepd/internal/store"
)

// Listener binds a TCP port and spawns one handler per accepted
// connection, bounded by a weighted semaphore. golang.org/x/sync/semaphore
// is cancellation aware, which lets Stop make the accept loop give up
// waiting for a slot instead of blocking forever on a saturated server.
type Listener struct {
	addr       string
	engine     *store.Engine
	stats      *Stats
	dispatcher *Dispatcher
	sem        *semaphore.Weighted

	listener net.Listener
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(addr string, engine *store.Engine, maxClients int64, defaultSnapshotPath string) *Listener {
	stats := &Stats{}
	ctx, cancel := context.WithCancel(context.Background())
	l := &Listener{
		addr:   addr,
		engine: engine,
		stats:  stats,
		sem:    semaphore.NewWeighted(maxClients),
		ctx:    ctx,
		cancel: cancel,
	}
	l.dispatcher = NewDispatcher(engine, stats, defaultSnapshotPath, l.Stop)
	return l
}

// Start binds the listening socket and begins accepting connections.
// It returns once the socket is bound; acceptance runs in the
// background until Stop is called.
func (l *Listener) Start() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.addr, err)
	}
	l.listener = ln
	logging.Infof("keepd listening on %s", l.addr)

	go l.acceptLoop()
	go l.engine.RunJanitor(l.ctx, 10*time.Second)
	return nil
}

// Stop stops accepting new connections. In-flight handlers are left to
// drain on their own, terminating on their next EOF or error.
func (l *Listener) Stop() {
	l.cancel()
	if l.listener != nil {
		l.listener.Close()
	}
}

func (l *Listener) acceptLoop() {
	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if l.ctx.Err() != nil {
				return // shutting down
			}
			logging.Warnf("accept error: %v", err)
			continue
		}

		if err := l.sem.Acquire(l.ctx, 1); err != nil {
			conn.Close() // shutting down while waiting for a free slot
			continue
		}

		go func() {
			defer l.sem.Release(1)
			l.handleConnection(conn)
		}()
	}
}

// handleConnection is the per-connection dispatch loop: decode,
// dispatch, encode, repeat. Each connection gets a stable id for
// tracing in the logs.
func (l *Listener) handleConnection(conn net.Conn) {
	id := uuid.New()
	l.stats.connectionOpened()
	defer l.stats.connectionClosed()
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		frame, err := protocol.Decode(reader)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			// Mid-frame MALFORMED: tell the client, then close.
			protocol.Encode(writer, protocol.Error(err.Error()))
			logging.Debugf("conn %s: malformed request: %v", id, err)
			return
		}

		result, sig := l.dispatcher.Dispatch(frame)

		if err := protocol.Encode(writer, result); err != nil {
			logging.Warnf("conn %s: write error: %v", id, err)
			return
		}

		switch sig {
		case signalQuit:
			return
		case signalShutdown:
			return
		}
	}
}
