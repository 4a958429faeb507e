package fastcdc

import "fmt"

// normalizationLevel controls how much more (MaskS) or less (MaskL)
// selective the two cut masks are than the baseline mask derived from
// AvgSize. 2 matches the "normalized chunking" level FastCDC's authors
// found to bias chunk sizes tightly around the average without the
// bimodal distribution a single mask produces.
const normalizationLevel = 2

// Default chunking parameters, per the documented defaults: 16 KiB min,
// 32 KiB average, 64 KiB max.
const (
	DefaultMinSize = 16 * 1024
	DefaultAvgSize = 32 * 1024
	DefaultMaxSize = 64 * 1024
)

// Params defines chunking parameters: the size bounds content-defined
// chunks must obey, and the two gear-hash masks derived from AvgSize
// that implement FastCDC's dual-mask cut rule.
type Params struct {
	MinSize int
	AvgSize int
	MaxSize int
	MaskS   uint64 // strict mask, tested while the chunk is shorter than AvgSize
	MaskL   uint64 // relaxed mask, tested once the chunk reaches AvgSize
	Gear    *GearTable
}

// NewParams validates min/avg/max and derives the dual cut masks from
// avg. Gear may be nil to use the package's default gear table.
//
// Parameters violating 0 < min <= avg <= max <= 2^31 are rejected here,
// before any bytes are read, per the chunker's stated failure modes.
func NewParams(min, avg, max int, gear *GearTable) (Params, error) {
	if min <= 0 || avg <= 0 || max <= 0 {
		return Params{}, fmt.Errorf("fastcdc: minSize, avgSize and maxSize must all be > 0")
	}
	if min > avg || avg > max {
		return Params{}, fmt.Errorf("fastcdc: parameters must satisfy minSize <= avgSize <= maxSize")
	}
	if max > 1<<31 {
		return Params{}, fmt.Errorf("fastcdc: maxSize must be <= 2^31")
	}

	var bits uint
	for (1 << bits) < avg {
		bits++
	}

	return Params{
		MinSize: min,
		AvgSize: avg,
		MaxSize: max,
		MaskS:   maskWithBits(bits + normalizationLevel),
		MaskL:   maskWithBits(subtractClamped(bits, normalizationLevel)),
		Gear:    gear,
	}, nil
}

// DefaultParams returns the documented default chunking parameters.
func DefaultParams() Params {
	p, _ := NewParams(DefaultMinSize, DefaultAvgSize, DefaultMaxSize, nil)
	return p
}

func maskWithBits(bits uint) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

func subtractClamped(bits, n uint) uint {
	if bits <= n {
		return 0
	}
	return bits - n
}

// gearTable returns the table to use for this Params: the caller-supplied
// one if set, otherwise the package default.
func (p Params) gearTable() *GearTable {
	if p.Gear != nil {
		return p.Gear
	}
	return &defaultGear
}
