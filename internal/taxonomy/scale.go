package taxonomy

import (
	"errors"
	"math/big"
	"regexp"
	"strings"

	"sourcemaps/pkg/contracts/domain"
)

// maxScaleDigits keeps the scale factor inside int64.
const maxScaleDigits = 18

// Scale is the shared power of ten applied to every weight.
type Scale struct {
	Digits int   `json:"digits"`
	Factor int64 `json:"factor"`
}

// decimalWeight is a plain signed decimal with an optional exponent.
var decimalWeight = regexp.MustCompile(`^[-+]?([0-9]+\.?[0-9]*|\.[0-9]+)([eE][-+]?[0-9]+)?$`)

// ParseWeight parses a decimal weight exactly. Fractions, hex floats, digit
// separators, negative values and anything else that is not a plain decimal
// number are rejected.
func ParseWeight(raw string) (*big.Rat, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, errEmptyWeight
	}
	if !decimalWeight.MatchString(s) {
		return nil, errNotDecimal
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, errNotDecimal
	}
	if r.Sign() < 0 {
		return nil, errNegativeWeight
	}
	return r, nil
}

var (
	errEmptyWeight    = errors.New("empty weight")
	errNotDecimal     = errors.New("not a decimal number")
	errNegativeWeight = errors.New("negative weight")
)

// DecimalPlaces returns the number of fractional digits in the shortest
// decimal form of r, so "0.120" and "0.12" both count 2 and "1.0" counts 0.
func DecimalPlaces(r *big.Rat) int {
	d := new(big.Int).Set(r.Denom())
	twos, fives := 0, 0
	two, five := big.NewInt(2), big.NewInt(5)
	mod := new(big.Int)
	for {
		q, m := new(big.Int).QuoRem(d, two, mod)
		if m.Sign() != 0 {
			break
		}
		d = q
		twos++
	}
	for {
		q, m := new(big.Int).QuoRem(d, five, mod)
		if m.Sign() != 0 {
			break
		}
		d = q
		fives++
	}
	return max(twos, fives)
}

// ScaleWeights derives one scale factor from the most precise non-root
// weight and rewrites every node's Weight as an exact integer. The root
// always weighs zero.
func ScaleWeights(nodes []domain.Node) (Scale, error) {
	parsed := make([]*big.Rat, len(nodes))
	digits := 0
	for i, n := range nodes {
		if n.IsRoot() {
			continue
		}
		r, err := ParseWeight(n.RawWeight)
		if err != nil {
			return Scale{}, &RowError{Line: n.Line, Tier: n.Tier, Column: domain.ColumnRelativeImportance, Value: n.RawWeight, Reason: err.Error()}
		}
		parsed[i] = r
		digits = max(digits, DecimalPlaces(r))
	}
	if digits > maxScaleDigits {
		return Scale{}, &RowError{Column: domain.ColumnRelativeImportance, Reason: "too many decimal places to scale into 64-bit integers"}
	}

	factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	for i := range nodes {
		if parsed[i] == nil {
			nodes[i].Weight = 0
			continue
		}
		scaled := new(big.Int).Mul(parsed[i].Num(), factor)
		scaled.Quo(scaled, parsed[i].Denom())
		if !scaled.IsInt64() {
			n := nodes[i]
			return Scale{}, &RowError{Line: n.Line, Tier: n.Tier, Column: domain.ColumnRelativeImportance, Value: n.RawWeight, Reason: "scaled weight overflows int64"}
		}
		nodes[i].Weight = scaled.Int64()
	}
	return Scale{Digits: digits, Factor: factor.Int64()}, nil
}
