package log

import (
	"os"
	"sync"
)

// BackupSuffix is appended to the trace path for the rotated file.
const BackupSuffix = ".1"

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithMaxSize bounds the trace file to n bytes. When the next event would
// push the file past n, the file is renamed to path+BackupSuffix (replacing
// any older backup) and a fresh file is started. Rotation happens between
// events, so both files stay decodable. n <= 0 means unbounded.
func WithMaxSize(n int64) FileOption {
	return func(l *FileLogger) {
		l.maxSize = n
	}
}

// FileLogger appends events to a trace file in CBOR format.
// It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	size    int64
	maxSize int64
	closed  bool

	rotations int
	dropped   int
}

// NewFileLogger opens path for appending, creating it with mode 0600.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	l := &FileLogger{path: path}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	l.file = f
	l.size = info.Size()
	return nil
}

// rotate moves the current file aside and starts a new one.
func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}
	l.file = nil
	if err := os.Rename(l.path, l.path+BackupSuffix); err != nil {
		return err
	}
	l.rotations++
	return l.open()
}

// Log appends an event. Failures are counted, not returned, so tracing
// never disrupts provisioning.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	data, err := EncodeEvent(event)
	if err != nil {
		l.dropped++
		return
	}

	if l.maxSize > 0 && l.size > 0 && l.size+int64(len(data)) > l.maxSize {
		if err := l.rotate(); err != nil {
			// Keep appending to whatever is open; reopen if rotate lost it.
			if l.file == nil && l.open() != nil {
				l.dropped++
				return
			}
		}
	}

	n, err := l.file.Write(data)
	l.size += int64(n)
	if err != nil {
		l.dropped++
	}
}

// Stats reports how often the file was rotated and how many events could
// not be written.
func (l *FileLogger) Stats() (rotations, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotations, l.dropped
}

// Close closes the trace file. Further Log calls are ignored.
// It is safe to call Close multiple times.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
