// Package sampler drives welford accumulators from a sample source, once per
// tick of a control loop.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/cgxeiji/welford"
)

var (
	// ErrSourceFailed is returned by Run when the source fails more times in
	// a row than allowed by MaxFailures.
	ErrSourceFailed = errors.New("sampler: source keeps failing")
)

// Source produces one sample per call. It returns io.EOF once exhausted.
type Source interface {
	Sample() (float64, error)
}

// Reading is the state of the accumulators after one sample.
type Reading struct {
	Sample   float64
	Count    uint64
	Mean     float64
	Variance float64
	StdDev   float64
	Average  float64
	// Gated is true when the decaying average rejected the sample.
	Gated bool
	// Pruned is the number of samples dropped by pruning after this sample.
	Pruned int
}

// Sampler feeds every sample of a source to a moments strategy and to a
// decaying average. It is not safe for concurrent use.
type Sampler struct {
	src     Source
	moments welford.Moments
	average *welford.DecayingAverage

	interval    time.Duration
	pruneEvery  uint64
	maxFailures int
	onReading   func(Reading)
	log         *zap.Logger

	samples  uint64
	failures int
	last     Reading
}

// New returns a sampler reading from src. A nil moments uses a
// welford.RunningMoments and a nil average a default
// welford.DecayingAverage.
func New(src Source, moments welford.Moments, average *welford.DecayingAverage, options ...Option) (*Sampler, error) {
	if src == nil {
		return nil, errors.New("sampler: nil source")
	}
	if moments == nil {
		moments = welford.NewRunningMoments()
	}
	if average == nil {
		var err error
		if average, err = welford.NewDecayingAverage(); err != nil {
			return nil, fmt.Errorf("sampler: could not create average: %w", err)
		}
	}

	s := &Sampler{
		src:         src,
		moments:     moments,
		average:     average,
		interval:    DefaultInterval,
		maxFailures: DefaultMaxFailures,
		log:         zap.NewNop(),
	}
	s.Options(options...)

	return s, nil
}

// Moments returns the moments strategy fed by the sampler.
func (s *Sampler) Moments() welford.Moments {
	return s.moments
}

// Average returns the decaying average fed by the sampler.
func (s *Sampler) Average() *welford.DecayingAverage {
	return s.average
}

// Last returns the reading of the last successful Step.
func (s *Sampler) Last() Reading {
	return s.last
}

// Step reads one sample and feeds it to the accumulators. Pruning, when
// enabled, runs after every PruneEvery samples.
func (s *Sampler) Step() (Reading, error) {
	x, err := s.src.Sample()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Reading{}, err
		}
		return Reading{}, fmt.Errorf("sampler: could not read sample: %w", err)
	}
	s.samples++

	s.moments.Update(x)

	before := s.average.DatapointCount()
	avg := s.average.Accumulate(x)

	r := Reading{
		Sample:  x,
		Average: avg,
		Gated:   s.average.DatapointCount() == before,
	}

	if p, ok := s.moments.(welford.Pruner); ok && s.pruneEvery > 0 && s.samples%s.pruneEvery == 0 {
		r.Pruned = p.PruneOutliers()
		if r.Pruned > 0 {
			s.log.Debug("Pruned outliers", zap.Int("dropped", r.Pruned))
		}
	}

	r.Count = s.moments.Count()
	r.Mean = s.moments.Mean()
	r.Variance = s.moments.Variance()
	r.StdDev = s.moments.StdDev()

	s.last = r
	return r, nil
}

// Run calls Step once per interval until ctx is done, the source is
// exhausted, or the source fails more than MaxFailures times in a row. An
// exhausted source ends the run without error.
func (s *Sampler) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}

	defer func() {
		s.log.Info("Sampling stopped",
			zap.Uint64("samples", s.samples),
			zap.Uint64("count", s.moments.Count()),
			zap.Float64("mean", s.moments.Mean()),
			zap.Float64("stddev", finite(s.moments.StdDev())),
			zap.Float64("average", s.last.Average),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r, err := s.Step()
		switch {
		case errors.Is(err, io.EOF):
			return nil

		case err != nil:
			s.failures++
			s.log.Warn("Could not sample", zap.Int("failures", s.failures), zap.Error(err))
			if s.failures > s.maxFailures {
				return fmt.Errorf("%w after %d attempts: %v", ErrSourceFailed, s.failures, err)
			}

		default:
			s.failures = 0
			if s.onReading != nil {
				s.onReading(r)
			}
		}

		if tick == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
}

// finite replaces the undefined statistic sentinel for log fields.
func finite(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
