// Package context defines the runtime context shared by modelvc core
// operations: the storage provider, the logger, per-line serialization
// locks and a small worker pool for deferred maintenance.
//
// A Stores handle is explicitly constructed and torn down with Close,
// so embedding applications and tests can run any number of isolated
// instances.
package context

import (
	"sync"

	"github.com/metaforge/modelvc/pkg/storage"
	"go.uber.org/zap"
)

// Stores bundles the collaborators consumed by core operations
type Stores interface {
	// Provider yields the storage provider backing all lines
	Provider() storage.Provider

	// Logger yields the context logger
	Logger() *zap.Logger

	// LockKey serializes operations on one line key. The returned
	// function releases the lock.
	LockKey(key string) func()

	// Defer schedules a maintenance task on the background pool.
	// Tasks run at most poolSize at a time; Close drains them.
	Defer(task func())

	// Close tears the context down, draining pending deferred tasks
	Close() error
}

// type safeguard
var _ Stores = &defaultStores{}

type defaultStores struct {
	provider storage.Provider
	l        *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	tasks  chan func()
	closed chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

const defaultPoolSize = 4

// Option configures a Stores handle
type Option func(*defaultStores)

// Logger sets the context logger
func Logger(l *zap.Logger) Option {
	return func(s *defaultStores) {
		if l != nil {
			s.l = l
		}
	}
}

// New builds a runtime context around a storage provider
func New(provider storage.Provider, opts ...Option) Stores {
	s := &defaultStores{
		provider: provider,
		l:        zap.NewNop(),
		locks:    make(map[string]*sync.Mutex),
		tasks:    make(chan func(), 64),
		closed:   make(chan struct{}),
	}
	for _, apply := range opts {
		apply(s)
	}
	s.wg.Add(defaultPoolSize)
	for i := 0; i < defaultPoolSize; i++ {
		go s.worker()
	}
	return s
}

func (s *defaultStores) worker() {
	defer s.wg.Done()
	for task := range s.tasks {
		task()
	}
}

func (s *defaultStores) Provider() storage.Provider {
	return s.provider
}

func (s *defaultStores) Logger() *zap.Logger {
	return s.l
}

func (s *defaultStores) LockKey(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()
	lock.Lock()
	return lock.Unlock
}

func (s *defaultStores) Defer(task func()) {
	select {
	case <-s.closed:
		// context torn down: run inline rather than dropping the task
		task()
	default:
		select {
		case s.tasks <- task:
		default:
			task()
		}
	}
}

func (s *defaultStores) Close() error {
	s.once.Do(func() {
		close(s.closed)
		close(s.tasks)
	})
	s.wg.Wait()
	return nil
}
