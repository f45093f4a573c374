package logger

import (
	"bufio"
	"bytes"
	"sync"
	"time"
)

// BufferedWriter buffers log writes and flushes them periodically.
// Lines containing an error or fatal level marker are flushed immediately
// so crash output is never lost in the buffer.
type BufferedWriter struct {
	mu     sync.Mutex
	w      *bufio.Writer
	done   chan struct{}
	closed bool
}

var urgentLevels = [][]byte{
	[]byte(`"level":"error"`),
	[]byte(`"level":"fatal"`),
	[]byte("ERROR"),
	[]byte("FATAL"),
}

// NewBufferedWriter wraps w with a 256KB buffer flushed every interval.
func NewBufferedWriter(w interface{ Write([]byte) (int, error) }, interval time.Duration) *BufferedWriter {
	bw := &BufferedWriter{
		w:    bufio.NewWriterSize(w, 256*1024),
		done: make(chan struct{}),
	}
	go bw.flushLoop(interval)
	return bw
}

func (b *BufferedWriter) flushLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			_ = b.w.Flush()
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

func (b *BufferedWriter) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.w.Write(p)
	if err != nil {
		return n, err
	}
	for _, marker := range urgentLevels {
		if bytes.Contains(p, marker) {
			err = b.w.Flush()
			break
		}
	}
	return n, err
}

// Sync flushes any buffered data
func (b *BufferedWriter) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.w.Flush()
}

// Close stops the flush loop and flushes remaining data
func (b *BufferedWriter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	return b.w.Flush()
}
