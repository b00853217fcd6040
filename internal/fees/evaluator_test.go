package fees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally-backend/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func i64(v int64) *int64 { return &v }

func rangeConfig(kind domain.FeeRuleKind, defaultFee string, rules ...domain.FeeRule) domain.FeeConfig {
	return domain.FeeConfig{
		Kind:       kind,
		Mode:       domain.FeeModeRangeBased,
		Rules:      rules,
		DefaultFee: dec(defaultFee),
	}
}

func TestEvaluate_Percentage(t *testing.T) {
	cfg := domain.FeeConfig{
		Kind:    domain.FeeRuleKindCOD,
		Mode:    domain.FeeModePercentage,
		Percent: dec("2.5"),
	}
	got := Evaluate(cfg, dec("1000"))
	assert.True(t, got.Equal(dec("25")), "got %s", got)
}

func TestEvaluate_Fixed(t *testing.T) {
	cfg := domain.FeeConfig{
		Kind:       domain.FeeRuleKindCOD,
		Mode:       domain.FeeModeFixed,
		FlatAmount: dec("15"),
	}
	assert.True(t, Evaluate(cfg, dec("1")).Equal(dec("15")))
	assert.True(t, Evaluate(cfg, dec("99999")).Equal(dec("15")))
}

func TestEvaluate_RangeBased(t *testing.T) {
	cfg := rangeConfig(domain.FeeRuleKindCOD, "7",
		domain.FeeRule{Min: 1, Max: i64(5), Fee: dec("10")},
		domain.FeeRule{Min: 6, Max: nil, Fee: dec("20")},
	)

	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"inside first tier", "5", "10"},
		{"lower bound of open tier", "6", "20"},
		{"far into open tier", "100000", "20"},
		{"fraction inside first tier", "4.99", "10"},
		{"fraction between tiers takes the default", "5.99", "7"},
		{"below all tiers falls to default", "0.5", "7"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(cfg, dec(tc.amount))
			assert.True(t, got.Equal(dec(tc.want)), "fee = %s, want %s", got, tc.want)
		})
	}
}

func TestEvaluate_OverlappingTiersFirstMatchWins(t *testing.T) {
	cfg := rangeConfig(domain.FeeRuleKindCOD, "0",
		domain.FeeRule{Min: 1, Max: i64(10), Fee: dec("5")},
		domain.FeeRule{Min: 5, Max: i64(20), Fee: dec("9")},
	)
	got := Evaluate(cfg, dec("7"))
	assert.True(t, got.Equal(dec("5")), "got %s", got)
}

func TestQuantityPrice_RangeBased(t *testing.T) {
	cfg := rangeConfig(domain.FeeRuleKindQuantity, "3",
		domain.FeeRule{Min: 1, Max: i64(5), Fee: dec("10")},
		domain.FeeRule{Min: 6, Max: i64(10), Fee: dec("18")},
	)

	tests := []struct {
		name string
		qty  int64
		want string
	}{
		{"tier match", 4, "10"},
		{"second tier", 10, "18"},
		{"beyond tiers charges default per extra unit", 13, "36"}, // (13-1)*3
		{"zero quantity charges nothing", 0, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := QuantityPrice(cfg, tc.qty)
			assert.True(t, got.Equal(dec(tc.want)), "price = %s, want %s", got, tc.want)
		})
	}
}

func TestQuantityPrice_NoTiersSingleUnitFree(t *testing.T) {
	cfg := rangeConfig(domain.FeeRuleKindQuantity, "4")
	assert.True(t, QuantityPrice(cfg, 1).IsZero())
	assert.True(t, QuantityPrice(cfg, 2).Equal(dec("4")))
}

func TestValidateRules(t *testing.T) {
	tests := []struct {
		name    string
		rules   []domain.FeeRule
		wantErr bool
	}{
		{
			name: "valid tiers",
			rules: []domain.FeeRule{
				{Min: 1, Max: i64(5), Fee: dec("10")},
				{Min: 6, Max: nil, Fee: dec("20")},
			},
		},
		{
			name:    "min below one",
			rules:   []domain.FeeRule{{Min: 0, Fee: dec("10")}},
			wantErr: true,
		},
		{
			name:    "max below min",
			rules:   []domain.FeeRule{{Min: 10, Max: i64(5), Fee: dec("10")}},
			wantErr: true,
		},
		{
			name:    "negative fee",
			rules:   []domain.FeeRule{{Min: 1, Fee: dec("-1")}},
			wantErr: true,
		},
		{
			name: "overlap is allowed",
			rules: []domain.FeeRule{
				{Min: 1, Max: i64(10), Fee: dec("5")},
				{Min: 5, Max: i64(20), Fee: dec("9")},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRules(tc.rules)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrInvalidFeeRule)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNormalizeRules(t *testing.T) {
	rules := []domain.FeeRule{
		{Min: 6, Fee: dec("20")},
		{Min: 1, Max: i64(5), Fee: dec("10")},
	}
	NormalizeRules(rules)
	assert.Equal(t, int64(1), rules[0].Min)
	assert.Equal(t, int64(6), rules[1].Min)
}

func TestValidateConfig(t *testing.T) {
	cfg := domain.FeeConfig{
		Kind: domain.FeeRuleKindCOD,
		Mode: domain.FeeModeRangeBased,
		Rules: []domain.FeeRule{
			{Min: 6, Fee: dec("20")},
			{Min: 1, Max: i64(5), Fee: dec("10")},
		},
		DefaultFee: dec("7"),
	}
	require.NoError(t, ValidateConfig(&cfg))
	// normalized in place
	assert.Equal(t, int64(1), cfg.Rules[0].Min)

	bad := domain.FeeConfig{Kind: domain.FeeRuleKind("unknown"), Mode: domain.FeeModeFixed}
	err := ValidateConfig(&bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidFeeRule)
}
