// Command welfordmon prints running statistics of a sampled signal, read from
// an I²C ADC or replayed from a recording.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v2"

	"github.com/cgxeiji/welford"
	"github.com/cgxeiji/welford/adc"
	"github.com/cgxeiji/welford/sampler"
)

type app struct {
	cfg        config
	configPath string
	log        *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: defaultConfig()}

	root := &cobra.Command{
		Use:          "welfordmon",
		Short:        "Print running statistics of a sampled signal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.configPath != "" {
				if err := a.cfg.load(a.configPath, cmd.Flags()); err != nil {
					return err
				}
			}
			return a.initLogger()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	a.cfg.bindFlags(root.PersistentFlags())

	adcCmd := &cobra.Command{
		Use:   "adc",
		Short: "Sample the differential amplifier ADC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.openADC()
			if err != nil {
				return err
			}
			defer d.Close()

			return a.run(cmd, d)
		},
	}
	adcCmd.Flags().StringVar(&a.cfg.Bus, "bus", a.cfg.Bus, "I²C bus name, empty selects the first available bus")
	adcCmd.Flags().Uint16Var(&a.cfg.Addr, "addr", a.cfg.Addr, "I²C address of the ADC")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Record the zero, min and max counts of the ADC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.openADC()
			if err != nil {
				return err
			}
			defer d.Close()

			return calibrate(d, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	calibrateCmd.Flags().AddFlagSet(adcCmd.Flags())

	replayCmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Replay recorded samples at the sampling interval, - reads stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			return a.run(cmd, sampler.NewReplaySource(r))
		},
	}

	root.AddCommand(adcCmd, calibrateCmd, replayCmd)
	return root
}

func (a *app) initLogger() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(a.cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if a.cfg.DevLog {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	log, err := zc.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.log = log
	return nil
}

func (a *app) openADC() (*adc.Device, error) {
	d, err := adc.New(a.cfg.Bus, a.cfg.Addr)
	if err != nil {
		return nil, err
	}

	if a.cfg.Calibration != nil {
		if _, err := d.Options(adc.Calibrate(*a.cfg.Calibration)); err != nil {
			d.Close()
			return nil, err
		}
	}

	a.log.Info("ADC ready", zap.Uint16("addr", a.cfg.Addr), zap.Any("calibration", d.Calibration()))
	return d, nil
}

func (a *app) run(cmd *cobra.Command, src sampler.Source) error {
	moments, err := a.cfg.newMoments()
	if err != nil {
		return err
	}
	average, err := a.cfg.newAverage()
	if err != nil {
		return err
	}
	average.Options(welford.WithLogger(a.log))

	out := cmd.OutOrStdout()
	s, err := sampler.New(src, moments, average,
		sampler.Interval(a.cfg.Interval),
		sampler.PruneEvery(a.cfg.PruneEvery),
		sampler.MaxFailures(a.cfg.MaxFailures),
		sampler.WithLogger(a.log),
		sampler.OnReading(func(r sampler.Reading) {
			printReading(out, r)
		}),
	)
	if err != nil {
		return err
	}

	a.log.Info("Sampling",
		zap.String("strategy", a.cfg.Strategy),
		zap.Duration("interval", a.cfg.Interval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printReading(w io.Writer, r sampler.Reading) {
	mark := ""
	if r.Gated {
		mark = " gated"
	}
	if r.Pruned > 0 {
		mark += fmt.Sprintf(" pruned=%d", r.Pruned)
	}

	fmt.Fprintf(w, "sample=%.4f n=%d mean=%.4f var=%.4f sd=%.4f avg=%.4f%s\n",
		r.Sample, r.Count, r.Mean, r.Variance, r.StdDev, r.Average, mark)
}

// calibrate captures the three calibration points before validating them, so
// a device far from adc.DefaultCalibration can be calibrated.
func calibrate(d *adc.Device, in io.Reader, out io.Writer) error {
	c := d.Calibration()
	steps := []struct {
		prompt string
		point  *int
	}{
		{"Set both inputs to the same voltage", &c.Zero},
		{"Set the largest negative difference", &c.Min},
		{"Set the largest positive difference", &c.Max},
	}

	scanner := bufio.NewScanner(in)
	for _, step := range steps {
		fmt.Fprintf(out, "%s and press Enter: ", step.prompt)
		if !scanner.Scan() {
			return errors.New("calibration aborted")
		}
		n, err := d.ReadN()
		if err != nil {
			return fmt.Errorf("could not calibrate: %w", err)
		}
		*step.point = n
		fmt.Fprintf(out, "  read %d\n", n)
	}

	if _, err := d.Options(adc.Calibrate(c)); err != nil {
		return err
	}

	b, err := yaml.Marshal(struct {
		Calibration adc.Calibration `yaml:"calibration"`
	}{d.Calibration()})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%s", b)
	return nil
}
