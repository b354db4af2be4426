package search

import (
	"io"
	"net/http"
	"sync"

	"github.com/Laisky/errors/v2"
)

// ErrStreamClosed is returned by writes or closes after the stream was closed.
var ErrStreamClosed = errors.New("response stream already closed")

// Stream serialises fragment writes from concurrent branches into one
// response body and flushes after every write.
type Stream struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher
	writes  int
	closed  bool
	done    chan struct{}
}

// NewStream wraps w. Writers implementing http.Flusher are flushed per fragment.
func NewStream(w io.Writer) *Stream {
	s := &Stream{
		w:    w,
		done: make(chan struct{}),
	}
	s.flusher, _ = w.(http.Flusher)
	return s
}

// WriteFragment appends one fragment to the body.
func (s *Stream) WriteFragment(fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}

	s.writes++
	if _, err := io.WriteString(s.w, fragment); err != nil {
		return errors.Wrap(err, "write fragment")
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Close ends the stream. Only the first call succeeds.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	s.closed = true
	close(s.done)
	return nil
}

// Done is closed once the stream has been closed.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Writes reports how many fragment writes were attempted before close.
func (s *Stream) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
