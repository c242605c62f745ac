package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"github.com/nabbar/networkd/config"
	liberr "github.com/nabbar/networkd/errors"
	"github.com/nabbar/networkd/execsvc"
	"github.com/nabbar/networkd/file/perm"
	"github.com/nabbar/networkd/frame"
	"github.com/nabbar/networkd/ifwatch"
	"github.com/nabbar/networkd/logger"
	"github.com/nabbar/networkd/protocol"
)

// Supervisor owns the listening socket, both helper channels and the
// routing watcher for the life of the process. It is the only component
// that ever calls dropPrivileges or spawnHelper.
type Supervisor struct {
	cfg config.Config
	log logger.Logger

	listener net.Listener
	helpers  protocol.Helpers
	watcher  ifwatch.Watcher

	execProc  *os.Process
	writeProc *os.Process

	wg sync.WaitGroup
}

// New binds the listening socket, spawns both helpers and drops
// privileges, in that order — privileges are dropped last because binding
// the socket and forking helpers both still require the starting
// privilege level.
func New(cfg config.Config, log logger.Logger) (*Supervisor, error) {
	s := &Supervisor{cfg: cfg, log: log}

	if err := os.Remove(cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		return nil, liberr.Wrap(liberr.IOError, "removing stale socket", err)
	}

	ln, err := net.Listen("unix", cfg.SocketPath)
	if err != nil {
		return nil, liberr.Wrap(liberr.IOError, "binding control socket", err)
	}
	s.listener = ln

	mode, err := perm.Parse(cfg.SocketMode)
	if err != nil {
		ln.Close()
		return nil, liberr.Wrap(liberr.ValidationError, "parsing socket mode", err)
	}
	if err := os.Chmod(cfg.SocketPath, mode.FileMode()); err != nil {
		ln.Close()
		return nil, liberr.Wrap(liberr.IOError, "chmod control socket", err)
	}
	if err := chownSocket(cfg.SocketPath, cfg.Group); err != nil {
		log.Warning("chown control socket failed", logger.Fields{"error": err.Error()})
	}

	execCh, execProc, err := spawnHelper(HelperExec, cfg)
	if err != nil {
		ln.Close()
		return nil, err
	}
	s.helpers.Exec = execCh
	s.execProc = execProc

	writeCh, writeProc, err := spawnHelper(HelperWrite, cfg)
	if err != nil {
		ln.Close()
		return nil, err
	}
	s.helpers.Write = writeCh
	s.writeProc = writeProc

	watcher, err := ifwatch.New()
	if err != nil {
		log.Warning("link-state watcher unavailable", logger.Fields{"error": err.Error()})
	} else {
		s.watcher = watcher
	}

	if err := dropPrivileges(cfg.User, cfg.Group); err != nil {
		ln.Close()
		return nil, err
	}

	return s, nil
}

// Serve accepts client connections and dispatches their commands until ctx
// is cancelled or a SIGINT/SIGTERM arrives, then closes the listener and
// waits for in-flight connections to finish.
func (s *Supervisor) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if s.watcher != nil {
		s.wg.Add(1)
		go s.watchLinkState(ctx)
	}

	acceptErr := make(chan error, 1)
	go func() {
		acceptErr <- s.acceptLoop()
	}()

	select {
	case <-ctx.Done():
		s.log.Info("shutting down", nil)
	case err := <-acceptErr:
		if err != nil {
			s.log.Error("accept loop stopped", logger.Fields{"error": err.Error()})
		}
	}

	_ = s.listener.Close()
	s.wg.Wait()
	return nil
}

func (s *Supervisor) acceptLoop() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn reads up to 200 bytes at a time, splitting on newlines; each
// non-empty line is one command frame. Requests on a half-closed
// connection are discarded at EOF.
func (s *Supervisor) handleConn(conn net.Conn) {
	defer conn.Close()

	// Every connection gets its own correlation id so a run of log lines
	// from one client's commands can be told apart from a concurrent one.
	connID := uuid.New().String()
	log := connLogger{id: connID, log: s.log}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 200), 200)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		reply, handled := protocol.Dispatch(s.helpers, line, log)
		if !handled {
			continue
		}

		if _, err := conn.Write([]byte(reply)); err != nil {
			log.Warning("writing client reply failed", logger.Fields{"error": err.Error()})
			return
		}
	}
}

// connLogger attaches a connection's correlation id to every field set it
// is given, without every call site in protocol.Dispatch needing to know
// about connection identity.
type connLogger struct {
	id  string
	log logger.Logger
}

func (c connLogger) withConn(f logger.Fields) logger.Fields {
	if f == nil {
		f = logger.Fields{}
	}
	f["conn"] = c.id
	return f
}

func (c connLogger) Debug(msg string, f logger.Fields)   { c.log.Debug(msg, c.withConn(f)) }
func (c connLogger) Info(msg string, f logger.Fields)    { c.log.Info(msg, c.withConn(f)) }
func (c connLogger) Warning(msg string, f logger.Fields) { c.log.Warning(msg, c.withConn(f)) }
func (c connLogger) Error(msg string, f logger.Fields)   { c.log.Error(msg, c.withConn(f)) }
func (c connLogger) Fatal(msg string, f logger.Fields)   { c.log.Fatal(msg, c.withConn(f)) }
func (c connLogger) SetLevel(lvl logger.Level)           { c.log.SetLevel(lvl) }
func (c connLogger) GetLevel() logger.Level              { return c.log.GetLevel() }

// watchLinkState relays every interface transition the kernel reports to
// the exec helper's LOGEVENT operation, the side effect the original
// daemon's routing-socket monitor drives.
func (s *Supervisor) watchLinkState(ctx context.Context) {
	defer s.wg.Done()
	defer s.watcher.Close()

	events := make(chan ifwatch.Event)
	errs := make(chan error, 1)
	go func() {
		for {
			ev, err := s.watcher.Next()
			if err != nil {
				errs <- err
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			s.log.Warning("link-state watcher stopped", logger.Fields{"error": err.Error()})
			return
		case ev := <-events:
			state := "down"
			if ev.Up {
				state = "up"
			}
			msg := fmt.Sprintf("%s %s", state, ev.Iface)
			if _, err := s.helpers.Exec.Call(execsvc.LogEvent, []byte(fmt.Sprintf("%q", msg))); err != nil {
				s.log.Warning("logevent dispatch failed", logger.Fields{"error": err.Error()})
			}
		}
	}
}
