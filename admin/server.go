package admin

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bookedbarber/dashcache/api"
	"github.com/bookedbarber/dashcache/stats"
	"github.com/bookedbarber/dashcache/types"
)

// Snapshotter is the slice of the snapshot tier the server needs so that a
// category clear reaches disk as well as memory.
type Snapshotter interface {
	ClearPrefix(prefix string) (int, error)
}

// Server answers admin requests on a unix domain socket.
type Server struct {
	cache    api.Cache
	agg      *stats.Aggregator
	snapshot Snapshotter // optional
	log      logrus.FieldLogger

	l      net.Listener
	wg     sync.WaitGroup
	closed chan struct{}
}

// NewServer creates a Server. snapshot may be nil.
func NewServer(cache api.Cache, agg *stats.Aggregator, snapshot Snapshotter, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		cache:    cache,
		agg:      agg,
		snapshot: snapshot,
		log:      log,
		closed:   make(chan struct{}),
	}
}

// Listen binds the socket, replacing a stale one from a previous run, and
// starts accepting connections.
func (s *Server) Listen(socketPath string) error {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0o755); err != nil {
		return err
	}
	_ = os.Remove(socketPath)

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return err
	}
	_ = os.Chmod(socketPath, 0o600)
	s.l = l

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.l.Accept()
		if err != nil {
			select {
			case <-s.closed:
				return
			default:
				s.log.WithError(err).Warn("admin accept failed")
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	enc := json.NewEncoder(conn)
	for {
		var req Request
		if err := dec.Decode(&req); err != nil {
			return
		}
		_ = enc.Encode(s.handle(req))
	}
}

func (s *Server) handle(req Request) Response {
	switch req.Op {
	case OpStats:
		snap := s.agg.Snapshot()
		return Response{OK: true, Stats: &snap}

	case OpGet:
		v, err := s.cache.Get(context.Background(), req.Key)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, Value: v}

	case OpRemove:
		s.cache.Remove(req.Key)
		return Response{OK: true}

	case OpClear:
		removed := s.cache.Clear(types.Category(req.Category))
		if s.snapshot != nil {
			prefix := ""
			if req.Category != "" {
				prefix = req.Category + ":"
			}
			if _, err := s.snapshot.ClearPrefix(prefix); err != nil {
				s.log.WithError(err).Warn("snapshot clear failed")
			}
		}
		return Response{OK: true, Removed: removed}

	default:
		return Response{Error: "unknown op"}
	}
}

// Close stops accepting and waits for in-flight connections.
func (s *Server) Close() error {
	close(s.closed)
	var err error
	if s.l != nil {
		err = s.l.Close()
	}
	s.wg.Wait()
	return err
}
