package core

import (
	"go.uber.org/zap"
)

// ListOption sets options for listing core objects
type ListOption func(*Settings)

// Settings defines various settings for core features
type Settings struct {
	batchSize   int
	doneChannel chan struct{}
	l           *zap.Logger
}

const defaultBatchSize = 1024

// WithBatchSize sets the batch window used when walking long listings.
// It defaults to defaultBatchSize.
func WithBatchSize(batchSize int) ListOption {
	return func(s *Settings) {
		if batchSize > 0 {
			s.batchSize = batchSize
		}
	}
}

// WithDoneChan sets a signaling channel controlled by the caller to
// interrupt an ongoing listing
func WithDoneChan(done chan struct{}) ListOption {
	return func(s *Settings) {
		s.doneChannel = done
	}
}

// WithLogger overrides the context logger for one operation
func WithLogger(l *zap.Logger) ListOption {
	return func(s *Settings) {
		if l != nil {
			s.l = l
		}
	}
}

func defaultSettings() Settings {
	return Settings{
		batchSize: defaultBatchSize,
		l:         zap.NewNop(),
	}
}

func newSettings(opts ...ListOption) Settings {
	s := defaultSettings()
	for _, apply := range opts {
		apply(&s)
	}
	return s
}

func (s Settings) interrupted() bool {
	if s.doneChannel == nil {
		return false
	}
	select {
	case <-s.doneChannel:
		return true
	default:
		return false
	}
}
