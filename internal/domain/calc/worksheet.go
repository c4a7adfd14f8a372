package calc

import "github.com/shopspring/decimal"

// SubmissionInputs are the inputs of the simpler submission-style worksheet
// (contract plus supplements, minus advances).
type SubmissionInputs struct {
	ContractAmount      decimal.Decimal
	SupplementsApproved decimal.Decimal
	CommissionRate      decimal.Decimal // whole-number percent, e.g. 15 for 15%
	AdvancesPaid        decimal.Decimal
	IsFlatFee           bool
	FlatFeeAmount       decimal.Decimal
}

// SubmissionOutputs are the derived amounts of the submission worksheet.
type SubmissionOutputs struct {
	TotalJobRevenue   decimal.Decimal
	GrossCommission   decimal.Decimal
	NetCommissionOwed decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// TotalJobRevenue is the contract amount plus approved supplements.
func TotalJobRevenue(contract, supplements decimal.Decimal) decimal.Decimal {
	return contract.Add(supplements)
}

// GrossCommission is the rate applied to total job revenue, or the flat fee
// when the flat-fee flag is set (subcontractor case). A flat fee bypasses the
// percentage entirely.
func GrossCommission(revenue, rate decimal.Decimal, isFlatFee bool, flatFee decimal.Decimal) decimal.Decimal {
	if isFlatFee {
		return flatFee
	}
	return revenue.Mul(rate.Div(hundred))
}

// NetCommissionOwed is gross commission minus advances already paid. Draws
// can exceed earned commission, so a negative result is valid.
func NetCommissionOwed(gross, advances decimal.Decimal) decimal.Decimal {
	return gross.Sub(advances)
}

// ComputeSubmission evaluates the submission worksheet.
func ComputeSubmission(in SubmissionInputs) SubmissionOutputs {
	revenue := TotalJobRevenue(in.ContractAmount, in.SupplementsApproved)
	gross := GrossCommission(revenue, in.CommissionRate, in.IsFlatFee, in.FlatFeeAmount)

	return SubmissionOutputs{
		TotalJobRevenue:   revenue,
		GrossCommission:   gross,
		NetCommissionOwed: NetCommissionOwed(gross, in.AdvancesPaid),
	}
}
