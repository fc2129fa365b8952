package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v2"

	"github.com/cgxeiji/welford"
	"github.com/cgxeiji/welford/adc"
	"github.com/cgxeiji/welford/sampler"
)

// Strategies accepted by --strategy.
const (
	strategyRunning  = "running"
	strategyPrunable = "prunable"
	strategyConstMem = "constmem"
)

type outlierConfig struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	After float64 `yaml:"after"`
}

type config struct {
	Strategy       string        `yaml:"strategy"`
	Threshold      float64       `yaml:"threshold"`
	FudgeFactor    float64       `yaml:"fudge_factor"`
	Capacity       int           `yaml:"capacity"`
	Alpha          float64       `yaml:"alpha"`
	AlphaIncrement float64       `yaml:"alpha_increment"`
	Outliers       outlierConfig `yaml:"outliers"`
	Interval       time.Duration `yaml:"interval"`
	PruneEvery     uint64        `yaml:"prune_every"`
	MaxFailures    int           `yaml:"max_failures"`

	Bus         string           `yaml:"bus"`
	Addr        uint16           `yaml:"addr"`
	Calibration *adc.Calibration `yaml:"calibration"`

	LogLevel string `yaml:"log_level"`
	DevLog   bool   `yaml:"dev_log"`
}

func defaultConfig() config {
	return config{
		Strategy:       strategyRunning,
		Threshold:      welford.DefaultThreshold,
		FudgeFactor:    welford.DefaultFudgeFactor,
		Alpha:          welford.DefaultAlpha,
		AlphaIncrement: welford.DefaultAlphaIncrement,
		Outliers: outlierConfig{
			Min:   math.NaN(),
			Max:   math.NaN(),
			After: welford.Unbounded,
		},
		Interval:    sampler.DefaultInterval,
		MaxFailures: sampler.DefaultMaxFailures,
		Addr:        adc.Addr,
		LogLevel:    "info",
	}
}

func (c *config) bindFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Strategy, "strategy", c.Strategy, "moments strategy: running, prunable or constmem")
	flags.Float64Var(&c.Threshold, "threshold", c.Threshold, "outlier threshold in standard deviations")
	flags.Float64Var(&c.FudgeFactor, "fudge", c.FudgeFactor, "fraction of an outlier's deviation added to the mean (constmem)")
	flags.IntVar(&c.Capacity, "capacity", c.Capacity, "maximum number of kept samples, 0 keeps all (prunable)")
	flags.Float64Var(&c.Alpha, "alpha", c.Alpha, "raw smoothing factor of the decaying average")
	flags.Float64Var(&c.AlphaIncrement, "alpha-incr", c.AlphaIncrement, "raw ramp of the smoothing factor, 0 disables it")
	flags.Float64Var(&c.Outliers.Min, "outlier-min", c.Outliers.Min, "distance to the average where attenuation starts")
	flags.Float64Var(&c.Outliers.Max, "outlier-max", c.Outliers.Max, "distance to the average where samples are rejected")
	flags.Float64Var(&c.Outliers.After, "outlier-after", c.Outliers.After, "data points accumulated before outliers are gated")
	flags.DurationVar(&c.Interval, "interval", c.Interval, "time between samples")
	flags.Uint64Var(&c.PruneEvery, "prune-every", c.PruneEvery, "prune outliers every n samples, 0 never prunes (prunable)")
	flags.IntVar(&c.MaxFailures, "max-failures", c.MaxFailures, "consecutive source errors tolerated")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	flags.BoolVar(&c.DevLog, "dev-log", c.DevLog, "human readable logs")
}

// load reads a YAML configuration file into c. Flags set on the command line
// keep precedence over the file.
func (c *config) load(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	changed := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("failed to restore flag %s: %w", name, err)
		}
	}

	return nil
}

func (c *config) newMoments() (welford.Moments, error) {
	switch c.Strategy {
	case strategyRunning:
		return welford.NewRunningMoments(), nil
	case strategyPrunable:
		return welford.NewPrunableMoments(welford.Threshold(c.Threshold), welford.Capacity(c.Capacity))
	case strategyConstMem:
		return welford.NewConstantMemoryMoments(welford.Threshold(c.Threshold), welford.FudgeFactor(c.FudgeFactor))
	}

	return nil, fmt.Errorf("unknown strategy %q", c.Strategy)
}

func (c *config) newAverage() (*welford.DecayingAverage, error) {
	a, err := welford.NewDecayingAverage(
		welford.Alpha(c.Alpha),
		welford.AlphaIncrement(c.AlphaIncrement),
	)
	if err != nil {
		return nil, err
	}

	var min, max *float64
	if !math.IsNaN(c.Outliers.Min) {
		min = &c.Outliers.Min
	}
	if !math.IsNaN(c.Outliers.Max) {
		max = &c.Outliers.Max
	}
	if err := a.DefineOutlierMinMax(min, max, c.Outliers.After); err != nil {
		return nil, err
	}

	return a, nil
}
