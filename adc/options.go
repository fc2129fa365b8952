package adc

import "fmt"

// Option defines a functional option for the device.
type Option func(d *Device) (Option, error)

// Options set different configuration options and returns the previous value
// of the last option passed.
func (d *Device) Options(options ...Option) (Option, error) {
	var old Option
	var err error
	for _, opt := range options {
		old, err = opt(d)
		if err != nil {
			return nil, err
		}
	}

	return old, nil
}

// config replaces the bits of field in the config register with value and
// returns their previous state.
func (d *Device) config(field, value uint16) (uint16, error) {
	cfg, err := d.Read(RegConfig)
	if err != nil {
		return 0, fmt.Errorf("could not get %#x from config: %w", field, err)
	}
	old := cfg & field
	cfg = cfg&^field | value&field
	if err := d.Write(RegConfig, cfg); err != nil {
		return 0, fmt.Errorf("could not set %#x in config: %w", value, err)
	}

	return old, nil
}

// Channel selects the input multiplexer configuration.
func Channel(mux uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(muxMask, mux)
		if err != nil {
			return nil, fmt.Errorf("adc: could not configure channel: %w", err)
		}

		return Channel(old), nil
	}
}

// Gain sets the full scale range of the programmable gain amplifier.
func Gain(pga uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(pgaMask, pga)
		if err != nil {
			return nil, fmt.Errorf("adc: could not configure gain: %w", err)
		}

		return Gain(old), nil
	}
}

// DataRate sets the number of conversions per second.
func DataRate(dr uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(drMask, dr)
		if err != nil {
			return nil, fmt.Errorf("adc: could not configure data rate: %w", err)
		}

		return DataRate(old), nil
	}
}

// Mode sets continuous or single-shot conversion.
func Mode(mode uint16) Option {
	return func(d *Device) (Option, error) {
		old, err := d.config(modeMask, mode)
		if err != nil {
			return nil, fmt.Errorf("adc: could not configure mode: %w", err)
		}
		d.singleShot = mode&modeMask == ModeSingleShot

		return Mode(old), nil
	}
}

// Calibrate sets the counts used to normalize readings. See
// DefaultCalibration.
func Calibrate(c Calibration) Option {
	return func(d *Device) (Option, error) {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		old := d.cal
		d.cal = c

		return Calibrate(old), nil
	}
}
