// Package distribution defines the closed set of redshift and size
// distributions a galaxy catalogue can be drawn from.
package distribution

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Fixed shape parameters of the supported distributions.
const (
	RedshiftMin = 0.1
	RedshiftMax = 3.0

	redshiftExpScale   = 0.5
	redshiftGammaShape = 2.0
	redshiftGammaScale = 0.3

	sizeLogNormalMu    = 0.0 // log(1.0): median size of one
	sizeLogNormalSigma = 0.5
	sizeNormalMean     = 1.0
	sizeNormalStd      = 0.3
	sizeExpScale       = 1.0
)

// RedshiftKind selects the redshift distribution of a catalogue.
type RedshiftKind int

// Supported redshift distributions.
const (
	RedshiftExponential RedshiftKind = iota + 1
	RedshiftGamma
	RedshiftUniform
)

var redshiftNames = map[RedshiftKind]string{
	RedshiftExponential: "exp",
	RedshiftGamma:       "gamma",
	RedshiftUniform:     "uniform",
}

// ParseRedshiftKind maps a configuration name to a RedshiftKind.
func ParseRedshiftKind(name string) (RedshiftKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, v := range redshiftNames {
		if v == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown redshift distribution %q", ErrInvalidDistributionKind, name)
}

func (k RedshiftKind) String() string {
	if n, ok := redshiftNames[k]; ok {
		return n
	}
	return fmt.Sprintf("RedshiftKind(%d)", int(k))
}

// Validate reports whether k is one of the supported kinds.
func (k RedshiftKind) Validate() error {
	if _, ok := redshiftNames[k]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidDistributionKind, k)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *RedshiftKind) UnmarshalText(b []byte) error {
	v, err := ParseRedshiftKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k RedshiftKind) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// Rander returns a sampler for k drawing from src. Values are not clipped.
func (k RedshiftKind) Rander(src rand.Source) (distuv.Rander, error) {
	switch k {
	case RedshiftExponential:
		return distuv.Exponential{Rate: 1 / redshiftExpScale, Src: src}, nil
	case RedshiftGamma:
		return distuv.Gamma{Alpha: redshiftGammaShape, Beta: 1 / redshiftGammaScale, Src: src}, nil
	case RedshiftUniform:
		return distuv.Uniform{Min: RedshiftMin, Max: RedshiftMax, Src: src}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDistributionKind, k)
	}
}

// SizeKind selects the angular size distribution of a catalogue.
type SizeKind int

// Supported size distributions.
const (
	SizeLogNormal SizeKind = iota + 1
	SizeNormal
	SizeExponential
)

var sizeNames = map[SizeKind]string{
	SizeLogNormal:   "lognormal",
	SizeNormal:      "normal",
	SizeExponential: "exponential",
}

// ParseSizeKind maps a configuration name to a SizeKind.
func ParseSizeKind(name string) (SizeKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, v := range sizeNames {
		if v == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown size distribution %q", ErrInvalidDistributionKind, name)
}

func (k SizeKind) String() string {
	if n, ok := sizeNames[k]; ok {
		return n
	}
	return fmt.Sprintf("SizeKind(%d)", int(k))
}

// Validate reports whether k is one of the supported kinds.
func (k SizeKind) Validate() error {
	if _, ok := sizeNames[k]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidDistributionKind, k)
	}
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SizeKind) UnmarshalText(b []byte) error {
	v, err := ParseSizeKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (k SizeKind) MarshalText() ([]byte, error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return []byte(k.String()), nil
}

// Rander returns a sampler for k drawing from src. The normal kind may
// yield negative values; callers take the absolute value.
func (k SizeKind) Rander(src rand.Source) (distuv.Rander, error) {
	switch k {
	case SizeLogNormal:
		return distuv.LogNormal{Mu: sizeLogNormalMu, Sigma: sizeLogNormalSigma, Src: src}, nil
	case SizeNormal:
		return distuv.Normal{Mu: sizeNormalMean, Sigma: sizeNormalStd, Src: src}, nil
	case SizeExponential:
		return distuv.Exponential{Rate: 1 / sizeExpScale, Src: src}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidDistributionKind, k)
	}
}
