package calc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ProfitSplit is a recognized profit-split label decomposed into its three
// fractional percentages. The label "15/40/60" means 15% O&P, 40% rep share,
// 60% company share; rep and company must sum to exactly 1.
type ProfitSplit struct {
	Label          string
	OPPercent      decimal.Decimal
	RepPercent     decimal.Decimal
	CompanyPercent decimal.Decimal
}

// splitTolerance is the floating tolerance for the rep+company == 1 check.
const splitTolerance = 1e-10

// ParseProfitSplit decomposes a "op/rep/company" label into fractional
// percentages. The label encodes whole-number percents.
func ParseProfitSplit(label string) (ProfitSplit, error) {
	parts := strings.Split(strings.TrimSpace(label), "/")
	if len(parts) != 3 {
		return ProfitSplit{}, fmt.Errorf("unrecognized profit-split label %q", label)
	}

	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || v > 100 {
			return ProfitSplit{}, fmt.Errorf("unrecognized profit-split label %q", label)
		}
		vals[i] = v
	}

	if math.Abs(vals[1]/100+vals[2]/100-1) > splitTolerance {
		return ProfitSplit{}, fmt.Errorf("profit-split label %q: rep and company shares must sum to 100", label)
	}

	return ProfitSplit{
		Label:          label,
		OPPercent:      decimal.NewFromFloat(vals[0]).Div(hundred),
		RepPercent:     decimal.NewFromFloat(vals[1]).Div(hundred),
		CompanyPercent: decimal.NewFromFloat(vals[2]).Div(hundred),
	}, nil
}
