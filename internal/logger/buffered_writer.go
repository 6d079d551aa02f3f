package logger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

const (
	DefaultBufferSize    = 32 * 1024
	DefaultFlushInterval = 5 * time.Second
	LogFilePermissions   = 0o600
)

var errWriterClosed = errors.New("log writer is closed")

// BufferedFileWriter appends log lines to a file through a buffer that is
// flushed on an interval and on Close. It is safe for concurrent use.
type BufferedFileWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer

	size     int
	interval time.Duration
	stop     chan struct{}
	closed   bool
	wg       sync.WaitGroup
}

// BufferedWriterOption configures a BufferedFileWriter
type BufferedWriterOption func(*BufferedFileWriter)

// WithBufferSize sets the buffer size in bytes
func WithBufferSize(size int) BufferedWriterOption {
	return func(w *BufferedFileWriter) {
		if size > 0 {
			w.size = size
		}
	}
}

// WithFlushInterval sets how often buffered lines reach the file; 0 flushes
// only on Flush and Close
func WithFlushInterval(interval time.Duration) BufferedWriterOption {
	return func(w *BufferedFileWriter) { w.interval = max(interval, 0) }
}

// NewBufferedFileWriter opens path for appending
func NewBufferedFileWriter(path string, opts ...BufferedWriterOption) (*BufferedFileWriter, error) {
	w := &BufferedFileWriter{size: DefaultBufferSize, interval: DefaultFlushInterval, stop: make(chan struct{})}
	for _, opt := range opts {
		opt(w)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from logging config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	w.file = f
	w.buf = bufio.NewWriterSize(f, w.size)

	if w.interval > 0 {
		w.wg.Go(w.flushEvery)
	}
	return w, nil
}

func (w *BufferedFileWriter) flushEvery() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			_ = w.Flush()
		}
	}
}

func (w *BufferedFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return 0, errWriterClosed
	}
	return w.buf.Write(p)
}

// Flush hands buffered lines to the OS without an fsync
func (w *BufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

// Buffered reports bytes not yet handed to the OS
func (w *BufferedFileWriter) Buffered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf == nil {
		return 0
	}
	return w.buf.Buffered()
}

// Close flushes, syncs and closes the file. Later calls return nil.
func (w *BufferedFileWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.stop)
	w.mu.Unlock()
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	err := errors.Join(w.buf.Flush(), w.file.Sync(), w.file.Close())
	w.buf, w.file = nil, nil
	return err
}
