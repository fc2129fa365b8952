// Package adc reads a differential amplifier through an ADS1015-class I²C
// analog to digital converter.
//
// The amplifier outputs gain*(A-B) + bias, where the bias is chosen so that a
// zero difference lands in the middle of the converter's range. Readings are
// normalized back to [-1, 1] against calibrated zero, minimum and maximum
// counts.
package adc

import (
	"errors"
	"fmt"

	"periph.io/x/periph/conn/i2c"
	"periph.io/x/periph/conn/i2c/i2creg"
	"periph.io/x/periph/host"
)

var (
	// ErrInvalidCalibration is returned when the calibrated counts are not
	// ordered as min < zero < max, or the tolerance is negative.
	ErrInvalidCalibration = errors.New("adc: invalid calibration")
)

// Calibration maps raw counts to normalized readings.
type Calibration struct {
	Zero      int `yaml:"zero"`      // counts read with no difference between the inputs
	Min       int `yaml:"min"`       // counts read at the largest negative difference
	Max       int `yaml:"max"`       // counts read at the largest positive difference
	Tolerance int `yaml:"tolerance"` // counts around Zero that still read as 0
}

// DefaultCalibration matches a 4.4V reference halved to a 2.2V bias, read
// on AIN0 with the ±6.144V range: 0.289V, 2.2V and 4.111V.
var DefaultCalibration = Calibration{
	Zero:      733,
	Min:       96,
	Max:       1370,
	Tolerance: 3,
}

// Validate returns an error wrapping ErrInvalidCalibration unless
// min < zero < max and the tolerance is not negative.
func (c Calibration) Validate() error {
	if c.Min >= c.Zero || c.Zero >= c.Max || c.Tolerance < 0 {
		return fmt.Errorf("%w: min %d, zero %d, max %d, tolerance %d",
			ErrInvalidCalibration, c.Min, c.Zero, c.Max, c.Tolerance)
	}
	return nil
}

// Device defines an ADS1015-class ADC wired to a differential amplifier.
type Device struct {
	dev *i2c.Dev
	bus i2c.BusCloser

	cal        Calibration
	prev       int
	singleShot bool
}

// New returns a new device on the named bus. By default, it reads AIN0
// single-ended with the ±6.144V range, continuously at 1600 samples/s.
//
// Argument "busName" can be used to specify the exact bus to use ("/dev/i2c-1", "I2C1", "1").
// Argument "addr" can be used to specify alternative address if default (0x48) is changed.
// If "busName" argument is specified as an empty string "" the first available bus will be used.
func New(busName string, addr uint16) (*Device, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("adc: could not initialize host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("adc: could not open I2C bus: %w", err)
	}

	d, err := Open(bus, addr)
	if err != nil {
		bus.Close()
		return nil, err
	}
	d.bus = bus

	if _, err = d.Options(
		Channel(MuxAIN0),
		Gain(PGA6144),
		DataRate(DR1600),
		Mode(ModeContinuous),
	); err != nil {
		d.Close()
		return nil, fmt.Errorf("adc: could not initialize device: %w", err)
	}

	return d, nil
}

// Open returns a device on an already opened bus, which stays owned by the
// caller. The device configuration is left untouched, including its
// conversion mode.
func Open(bus i2c.Bus, addr uint16) (*Device, error) {
	if addr == 0 {
		addr = Addr
	}

	d := &Device{
		dev: &i2c.Dev{
			Addr: addr,
			Bus:  bus,
		},
		cal: DefaultCalibration,
	}

	cfg, err := d.Read(RegConfig)
	if err != nil {
		return nil, fmt.Errorf("adc: no device at %#x: %w", addr, err)
	}
	d.singleShot = cfg&modeMask == ModeSingleShot

	return d, nil
}

// Close closes the bus if the device opened it.
func (d *Device) Close() error {
	if d.bus == nil {
		return nil
	}
	return d.bus.Close()
}

// Read reads a 16-bit register.
func (d *Device) Read(reg byte) (uint16, error) {
	b := make([]byte, 2)
	if err := d.dev.Tx([]byte{reg}, b); err != nil {
		return 0, fmt.Errorf("adc: could not read register %#x: %w", reg, err)
	}

	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Write writes a 16-bit register.
func (d *Device) Write(reg byte, data uint16) error {
	if err := d.dev.Tx([]byte{reg, byte(data >> 8), byte(data)}, nil); err != nil {
		return fmt.Errorf("adc: could not write register %#x: %w", reg, err)
	}

	return nil
}

// ReadN returns the last conversion result in counts, from -2048 to 2047. In
// single-shot mode, it starts a conversion and waits for it first.
func (d *Device) ReadN() (int, error) {
	if d.singleShot {
		if err := d.convert(); err != nil {
			return 0, err
		}
	}

	raw, err := d.Read(RegConversion)
	if err != nil {
		return 0, err
	}

	// 12-bit result, left aligned
	d.prev = int(int16(raw) >> 4)
	return d.prev, nil
}

func (d *Device) convert() error {
	cfg, err := d.Read(RegConfig)
	if err != nil {
		return fmt.Errorf("adc: could not start conversion: %w", err)
	}
	if err := d.Write(RegConfig, cfg|StartConversion); err != nil {
		return fmt.Errorf("adc: could not start conversion: %w", err)
	}

	for i := 0; i < conversionPolls; i++ {
		cfg, err := d.Read(RegConfig)
		if err != nil {
			return fmt.Errorf("adc: could not wait for conversion: %w", err)
		}
		if cfg&StartConversion != 0 {
			return nil
		}
	}

	return fmt.Errorf("adc: conversion still running after %d polls", conversionPolls)
}

// Last returns the counts of the last reading.
func (d *Device) Last() int {
	return d.prev
}

// ReadNormalized reads the converter and returns the amplified difference
// scaled to [-1, 1]: 0 at the zero count, 1 at the max count and -1 at the
// min count. Counts within the tolerance of zero read as 0.
func (d *Device) ReadNormalized() (float64, error) {
	n, err := d.ReadN()
	if err != nil {
		return 0, err
	}

	return d.cal.normalize(n), nil
}

func (c Calibration) normalize(n int) float64 {
	unbiased := float64(n - c.Zero)

	// a side left inconsistent by a partial calibration reads as 0
	switch {
	case n-c.Zero > c.Tolerance && c.Max > c.Zero:
		return unbiased / float64(c.Max-c.Zero)
	case n-c.Zero < -c.Tolerance && c.Zero > c.Min:
		return unbiased / float64(c.Zero-c.Min)
	}
	return 0
}

// Sample implements sampler.Source with ReadNormalized.
func (d *Device) Sample() (float64, error) {
	return d.ReadNormalized()
}

// Calibration returns the current calibration.
func (d *Device) Calibration() Calibration {
	return d.cal
}

// CalibrateZero reads the converter and uses the reading as the zero count.
// The inputs should be at the same voltage.
//
// Each calibration point is set on its own, so the calibration can be
// inconsistent until all three are captured. Use Calibrate to apply and
// validate a complete set at once.
func (d *Device) CalibrateZero() (int, error) {
	return d.calibrate(&d.cal.Zero)
}

// CalibrateMin reads the converter and uses the reading as the min count.
// The inputs should be at their largest negative difference.
func (d *Device) CalibrateMin() (int, error) {
	return d.calibrate(&d.cal.Min)
}

// CalibrateMax reads the converter and uses the reading as the max count.
// The inputs should be at their largest positive difference.
func (d *Device) CalibrateMax() (int, error) {
	return d.calibrate(&d.cal.Max)
}

func (d *Device) calibrate(field *int) (int, error) {
	n, err := d.ReadN()
	if err != nil {
		return 0, fmt.Errorf("adc: could not calibrate: %w", err)
	}

	*field = n
	return n, nil
}
