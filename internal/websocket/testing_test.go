package websocket

import (
	"errors"
	"sync"
	"time"
)

// fakeSocket is an in-memory Socket implementation for tests. ReadMessage
// blocks until the socket is closed, like a quiet peer. An optional write
// gate lets tests stall the writer pump to fill the outbound queue.
type fakeSocket struct {
	mu          sync.Mutex
	messages    [][]byte
	closed      bool
	failControl bool
	pongHandler func(string) error

	closeCh   chan struct{}
	closeOnce sync.Once
	writeGate chan struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{closeCh: make(chan struct{})}
}

// newStalledSocket returns a socket whose data writes block until
// releaseWrites is called.
func newStalledSocket() *fakeSocket {
	return &fakeSocket{closeCh: make(chan struct{}), writeGate: make(chan struct{})}
}

func (s *fakeSocket) releaseWrites() {
	close(s.writeGate)
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	<-s.closeCh
	return 0, nil, errors.New("use of closed network connection")
}

func (s *fakeSocket) WriteMessage(messageType int, data []byte) error {
	if s.writeGate != nil {
		select {
		case <-s.writeGate:
		case <-s.closeCh:
			return errors.New("connection closed")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("connection closed")
	}
	s.messages = append(s.messages, data)
	return nil
}

func (s *fakeSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failControl || s.closed {
		return errors.New("connection closed")
	}
	return nil
}

func (s *fakeSocket) SetReadLimit(int64)                 {}
func (s *fakeSocket) SetReadDeadline(time.Time) error    { return nil }
func (s *fakeSocket) SetWriteDeadline(time.Time) error   { return nil }
func (s *fakeSocket) SetPongHandler(h func(string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pongHandler = h
}

func (s *fakeSocket) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.closeCh)
	})
	return nil
}

// pong simulates the peer answering a heartbeat probe.
func (s *fakeSocket) pong() {
	s.mu.Lock()
	h := s.pongHandler
	s.mu.Unlock()
	if h != nil {
		_ = h("")
	}
}

func (s *fakeSocket) sentMessages() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *fakeSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
