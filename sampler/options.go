package sampler

import (
	"time"

	"go.uber.org/zap"
)

// Default configuration values.
const (
	DefaultInterval    = 10 * time.Millisecond
	DefaultMaxFailures = 5
)

// An Option configures a sampler.
type Option func(s *Sampler) Option

// Options applies options and returns the option that restores the previous
// value of the last option passed.
func (s *Sampler) Options(options ...Option) Option {
	var old Option
	for _, opt := range options {
		old = opt(s)
	}
	return old
}

// Interval sets the time between two samples. An interval of 0 samples as
// fast as the source allows. By default, the interval is 10ms.
func Interval(d time.Duration) Option {
	return func(s *Sampler) Option {
		old := s.interval
		s.interval = d
		return Interval(old)
	}
}

// PruneEvery prunes outliers every n samples when the moments strategy
// implements welford.Pruner. By default, or with n == 0, it never prunes.
func PruneEvery(n uint64) Option {
	return func(s *Sampler) Option {
		old := s.pruneEvery
		s.pruneEvery = n
		return PruneEvery(old)
	}
}

// MaxFailures sets how many consecutive source errors Run tolerates. By
// default, it tolerates 5.
func MaxFailures(n int) Option {
	return func(s *Sampler) Option {
		old := s.maxFailures
		s.maxFailures = n
		return MaxFailures(old)
	}
}

// OnReading sets a function called by Run with every successful reading.
func OnReading(fn func(Reading)) Option {
	return func(s *Sampler) Option {
		old := s.onReading
		s.onReading = fn
		return OnReading(old)
	}
}

// WithLogger sets the logger. By default, nothing is logged.
func WithLogger(log *zap.Logger) Option {
	return func(s *Sampler) Option {
		old := s.log
		if log == nil {
			log = zap.NewNop()
		}
		s.log = log
		return WithLogger(old)
	}
}
