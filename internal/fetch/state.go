package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Snapshot is a copy of a State at one instant.
type Snapshot[T any] struct {
	Name      string
	Loading   bool
	Error     string
	Err       error
	Data      T
	Loaded    bool
	UpdatedAt time.Time
}

// State tracks the request lifecycle of one data source: a loading flag, the
// last error message and the last good payload. A failed load keeps the
// previous payload.
type State[T any] struct {
	name   string
	logger *zap.Logger

	mu        sync.Mutex
	seq       uint64
	loading   bool
	err       error
	message   string
	data      T
	loaded    bool
	updatedAt time.Time
}

func NewState[T any](name string, logger *zap.Logger) *State[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State[T]{name: name, logger: logger.Named("fetch").With(zap.String("source", name))}
}

// Load runs fn and records its outcome. Only the most recently started load
// may write; an older one finishing late is dropped. A load whose context was
// cancelled leaves data and error untouched.
func (s *State[T]) Load(ctx context.Context, fn func(context.Context) (T, error)) error {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.loading = true
	s.err = nil
	s.message = ""
	s.mu.Unlock()

	started := time.Now()
	data, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		s.logger.Debug("stale load dropped", zap.Uint64("seq", seq))
		return err
	}
	s.loading = false

	if ctx.Err() != nil {
		s.logger.Debug("load cancelled", zap.Error(ctx.Err()))
		if err == nil {
			err = ctx.Err()
		}
		return err
	}
	if err != nil {
		s.err = err
		s.message = Message(s.name, err)
		s.logger.Warn("load failed", zap.Error(err), zap.Duration("elapsed", time.Since(started)))
		return err
	}

	s.data = data
	s.loaded = true
	s.updatedAt = time.Now()
	s.logger.Debug("load finished", zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (s *State[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot[T]{
		Name:      s.name,
		Loading:   s.loading,
		Error:     s.message,
		Err:       s.err,
		Data:      s.data,
		Loaded:    s.loaded,
		UpdatedAt: s.updatedAt,
	}
}

func (s *State[T]) Name() string {
	return s.name
}

// Reset forgets data and error, as when the inputs of the view change.
func (s *State[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.seq++
	s.loading = false
	s.err = nil
	s.message = ""
	s.data = zero
	s.loaded = false
	s.updatedAt = time.Time{}
}

// Message turns a load error into the text shown next to the view: the
// server's own error when it sent one, a generic line otherwise.
func Message(name string, err error) string {
	if err == nil {
		return ""
	}
	var user interface{ UserMessage() string }
	if errors.As(err, &user) {
		if msg := user.UserMessage(); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("Failed to load %s", name)
}
