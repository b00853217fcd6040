// Package fees evaluates tiered fee rules. The same range lookup serves
// two sites: the COD handling fee and quantity-based pricing.
package fees

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally-backend/internal/domain"
)

var oneHundred = decimal.NewFromInt(100)

// Evaluate computes the COD handling fee for an order amount.
//
// PERCENTAGE charges amount * pct / 100. FIXED charges the flat amount
// regardless of input. RANGE_BASED scans the rules ascending by min and
// takes the first tier containing the amount; with no match the default
// fee applies as-is.
func Evaluate(cfg domain.FeeConfig, amount decimal.Decimal) decimal.Decimal {
	switch cfg.Mode {
	case domain.FeeModePercentage:
		return amount.Mul(cfg.Percent).Div(oneHundred)
	case domain.FeeModeFixed:
		return cfg.FlatAmount
	case domain.FeeModeRangeBased:
		if rule, ok := findAmountRule(cfg.Rules, amount); ok {
			return rule.Fee
		}
		return cfg.DefaultFee
	}
	return decimal.Zero
}

// QuantityPrice computes the quantity-pricing charge. It differs from the
// COD default in one respect: with no matching tier, the default fee is
// charged only for units beyond the first, so a single unit is never
// charged by the default.
func QuantityPrice(cfg domain.FeeConfig, quantity int64) decimal.Decimal {
	switch cfg.Mode {
	case domain.FeeModePercentage:
		return decimal.NewFromInt(quantity).Mul(cfg.Percent).Div(oneHundred)
	case domain.FeeModeFixed:
		return cfg.FlatAmount
	case domain.FeeModeRangeBased:
		if rule, ok := findRule(cfg.Rules, quantity); ok {
			return rule.Fee
		}
		extra := quantity - 1
		if extra < 0 {
			extra = 0
		}
		return decimal.NewFromInt(extra).Mul(cfg.DefaultFee)
	}
	return decimal.Zero
}

// findRule returns the first rule, in ascending-min order, whose range
// contains x. Overlapping ranges are legal; first match wins.
func findRule(rules []domain.FeeRule, x int64) (domain.FeeRule, bool) {
	for _, r := range rules {
		if r.Matches(x) {
			return r, true
		}
	}
	return domain.FeeRule{}, false
}

// findAmountRule matches a monetary amount against the tiers without
// rounding it first. A fractional amount between adjacent tiers matches
// no rule and falls to the default fee.
func findAmountRule(rules []domain.FeeRule, x decimal.Decimal) (domain.FeeRule, bool) {
	for _, r := range rules {
		if r.MatchesAmount(x) {
			return r, true
		}
	}
	return domain.FeeRule{}, false
}

// ValidateRules checks every tier on edit or insert. Violations name the
// offending rule by index.
func ValidateRules(rules []domain.FeeRule) error {
	for i, r := range rules {
		if r.Min < 1 {
			return fmt.Errorf("ValidateRules: rule %d: min must be at least 1: %w", i, domain.ErrInvalidFeeRule)
		}
		if r.Max != nil && *r.Max < r.Min {
			return fmt.Errorf("ValidateRules: rule %d: max below min: %w", i, domain.ErrInvalidFeeRule)
		}
		if r.Fee.IsNegative() {
			return fmt.Errorf("ValidateRules: rule %d: negative fee: %w", i, domain.ErrInvalidFeeRule)
		}
	}
	return nil
}

// NormalizeRules re-sorts ascending by min. Run after every mutation so
// lookup order stays deterministic.
func NormalizeRules(rules []domain.FeeRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Min < rules[j].Min
	})
}

// ValidateConfig validates a whole config before it is stored.
func ValidateConfig(cfg *domain.FeeConfig) error {
	if !cfg.Kind.IsValid() {
		return fmt.Errorf("ValidateConfig: kind %q: %w", cfg.Kind, domain.ErrInvalidFeeRule)
	}
	if !cfg.Mode.IsValid() {
		return fmt.Errorf("ValidateConfig: mode %q: %w", cfg.Mode, domain.ErrInvalidFeeRule)
	}
	if cfg.Percent.IsNegative() || cfg.FlatAmount.IsNegative() || cfg.DefaultFee.IsNegative() {
		return fmt.Errorf("ValidateConfig: negative amount: %w", domain.ErrInvalidFeeRule)
	}
	if err := ValidateRules(cfg.Rules); err != nil {
		return fmt.Errorf("ValidateConfig: %w", err)
	}
	NormalizeRules(cfg.Rules)
	return nil
}
