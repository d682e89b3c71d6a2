package repository

import (
	"github.com/okian/kappagen/pkg/logger"
	"github.com/okian/kappagen/pkg/metrics"
)

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithLogger sets the logger for write events and cleanup failures.
func WithLogger(l logger.Logger) Option {
	return func(s *FileStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records written files on m instead of the global manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *FileStore) {
		if m != nil {
			s.metrics = m
		}
	}
}
