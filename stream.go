package bar

import (
	"io"
	"sync"
)

// sharedStream is a single seekable archive file shared by every book,
// chapter, and block handle opened from it. The original reference
// counts a RefCell around the stream so nested handles can each seek
// it independently; Go has no equivalent of "last handle drops the
// stream" to emulate, so the stream simply lives as long as something
// still references it and a mutex serializes the seek-then-read
// transactions the way [sharedStream.sectionAt] needs.
type sharedStream struct {
	mu sync.Mutex
	r  io.ReadSeeker
}

func newSharedStream(r io.ReadSeeker) *sharedStream {
	return &sharedStream{r: r}
}

// close releases the underlying stream, if it supports closing (the
// in-memory readers some tests use do not).
func (s *sharedStream) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// sectionAt returns a reader whose first Read starts at offset. Every
// section obtained from the same sharedStream serializes through one
// mutex, so interleaved reads from, say, a book handle and a block
// handle never race on the underlying seek position.
func (s *sharedStream) sectionAt(offset int64) (*streamSection, error) {
	return &streamSection{stream: s, pos: offset}, nil
}

// streamSection is a cursor into a sharedStream. It is not itself
// safe for concurrent use by multiple goroutines, but concurrent use
// of *different* sections from the same sharedStream is, since each
// Read takes the shared mutex for the duration of its seek+read.
type streamSection struct {
	stream *sharedStream
	pos    int64
}

func (sec *streamSection) Read(p []byte) (int, error) {
	sec.stream.mu.Lock()
	defer sec.stream.mu.Unlock()

	if _, err := sec.stream.r.Seek(sec.pos, io.SeekStart); err != nil {
		return 0, newIOError("seek failed", err)
	}
	n, err := sec.stream.r.Read(p)
	sec.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, newIOError("read failed", err)
	}
	return n, err
}
