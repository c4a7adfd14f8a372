// Package calc is the pure calculation engine for commission worksheets.
// Nothing in this package reads or writes workflow state; every function is a
// deterministic mapping from financial inputs to derived amounts.
package calc

import (
	"github.com/shopspring/decimal"
)

// DocumentInputs are the financial inputs of the O&P document worksheet.
type DocumentInputs struct {
	GrossContractTotal decimal.Decimal
	OPPercent          decimal.Decimal // fractional, 0..1
	MaterialCost       decimal.Decimal
	LaborCost          decimal.Decimal
	NegExpenses        [4]decimal.Decimal
	PosExpenses        [4]decimal.Decimal
	RepProfitPercent   decimal.Decimal // fractional, 0..1
}

// DocumentOutputs are the derived amounts of the O&P document worksheet.
// They are recomputed from inputs on every edit and never persisted
// independently of them.
type DocumentOutputs struct {
	OPAmount      decimal.Decimal
	ContractNet   decimal.Decimal
	NetProfit     decimal.Decimal
	RepCommission decimal.Decimal
	CompanyProfit decimal.Decimal
}

// OPAmount returns the overhead-and-profit amount removed from the gross
// contract value.
func OPAmount(gross, opPercent decimal.Decimal) decimal.Decimal {
	return gross.Mul(opPercent)
}

// ContractNet returns the contract value remaining after O&P.
func ContractNet(gross, opPercent decimal.Decimal) decimal.Decimal {
	return gross.Sub(OPAmount(gross, opPercent))
}

// NetProfit returns contract-net minus direct costs and negative expense
// lines plus positive expense lines. A negative result is valid and must
// propagate to the commission and company split.
func NetProfit(contractNet, material, labor decimal.Decimal, neg, pos [4]decimal.Decimal) decimal.Decimal {
	n := contractNet.Sub(material).Sub(labor)
	for _, e := range neg {
		n = n.Sub(e)
	}
	for _, e := range pos {
		n = n.Add(e)
	}
	return n
}

// RepCommission returns the rep's share of net profit. The sign follows net
// profit's sign.
func RepCommission(netProfit, repPercent decimal.Decimal) decimal.Decimal {
	return netProfit.Mul(repPercent)
}

// CompanyProfit returns the company's total take: the O&P amount plus the
// remainder of net profit after the rep's commission.
func CompanyProfit(opAmount, netProfit, repCommission decimal.Decimal) decimal.Decimal {
	return opAmount.Add(netProfit.Sub(repCommission))
}

// ComputeDocument evaluates the full O&P worksheet. Outputs are exact
// decimals; rounding to cents happens only at the formatting boundary, which
// keeps the profit-split identity exact for every input combination:
//
//	RepCommission + CompanyProfit == OPAmount + NetProfit
func ComputeDocument(in DocumentInputs) DocumentOutputs {
	op := OPAmount(in.GrossContractTotal, in.OPPercent)
	net := ContractNet(in.GrossContractTotal, in.OPPercent)
	profit := NetProfit(net, in.MaterialCost, in.LaborCost, in.NegExpenses, in.PosExpenses)
	rep := RepCommission(profit, in.RepProfitPercent)

	return DocumentOutputs{
		OPAmount:      op,
		ContractNet:   net,
		NetProfit:     profit,
		RepCommission: rep,
		CompanyProfit: CompanyProfit(op, profit, rep),
	}
}
