package adc

// Register addresses
const (
	RegConversion = 0x00
	RegConfig     = 0x01
)

// Device constants
const (
	Addr = 0x48

	// Config register polls before a single-shot conversion times out.
	conversionPolls = 200
)

// Operational status. Writing it starts a single-shot conversion; reading it
// returns 0 while a conversion is in progress.
const (
	StartConversion uint16 = 1 << 15
)

// Input multiplexer
const (
	MuxDiff01 uint16 = iota << 12
	MuxDiff03
	MuxDiff13
	MuxDiff23
	MuxAIN0
	MuxAIN1
	MuxAIN2
	MuxAIN3

	muxMask uint16 = 0b0111 << 12
)

// Programmable gain amplifier, as full scale range.
const (
	PGA6144 uint16 = iota << 9
	PGA4096
	PGA2048
	PGA1024
	PGA512
	PGA256

	pgaMask uint16 = 0b111 << 9
)

// Conversion mode
const (
	ModeContinuous uint16 = 0
	ModeSingleShot uint16 = 1 << 8

	modeMask uint16 = 1 << 8
)

// Data rate in samples per second
const (
	DR128 uint16 = iota << 5
	DR250
	DR490
	DR920
	DR1600
	DR2400
	DR3300

	drMask uint16 = 0b111 << 5
)
