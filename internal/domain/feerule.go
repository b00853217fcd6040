package domain

import (
	"github.com/shopspring/decimal"
)

type FeeMode string

const (
	FeeModePercentage FeeMode = "PERCENTAGE"
	FeeModeFixed      FeeMode = "FIXED"
	FeeModeRangeBased FeeMode = "RANGE_BASED"
)

func (m FeeMode) IsValid() bool {
	return m == FeeModePercentage || m == FeeModeFixed || m == FeeModeRangeBased
}

// FeeRuleKind names the two places tiered rules are evaluated.
type FeeRuleKind string

const (
	FeeRuleKindCOD      FeeRuleKind = "cod_fee"
	FeeRuleKindQuantity FeeRuleKind = "quantity_pricing"
)

func (k FeeRuleKind) IsValid() bool {
	return k == FeeRuleKindCOD || k == FeeRuleKindQuantity
}

// FeeRule is one tier. Max == nil means the tier is unbounded above.
type FeeRule struct {
	Min int64           `json:"min"`
	Max *int64          `json:"max"`
	Fee decimal.Decimal `json:"fee"`
}

// Matches reports whether x falls inside the tier.
func (r FeeRule) Matches(x int64) bool {
	if x < r.Min {
		return false
	}
	return r.Max == nil || x <= *r.Max
}

// MatchesAmount is the decimal form of Matches. The bounds are inclusive
// whole numbers; a fractional amount between adjacent tiers matches
// neither.
func (r FeeRule) MatchesAmount(x decimal.Decimal) bool {
	if x.LessThan(decimal.NewFromInt(r.Min)) {
		return false
	}
	return r.Max == nil || x.LessThanOrEqual(decimal.NewFromInt(*r.Max))
}

// FeeConfig parameterizes the evaluator for one use site. Rules are kept
// sorted ascending by Min so range lookup stays deterministic.
type FeeConfig struct {
	Kind       FeeRuleKind     `json:"kind"`
	Mode       FeeMode         `json:"mode"`
	Percent    decimal.Decimal `json:"percent"`
	FlatAmount decimal.Decimal `json:"flat_amount"`
	Rules      []FeeRule       `json:"rules"`
	DefaultFee decimal.Decimal `json:"default_fee"`
}
