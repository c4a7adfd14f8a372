// Package statement renders payout statements for approved commissions as
// xlsx workbooks: job facts, the financial breakdown for the request's
// worksheet variant, and the scheduled pay date.
package statement

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/crestline/roofops-commissions/internal/domain/entity"
	"github.com/crestline/roofops-commissions/internal/domain/money"
	"github.com/crestline/roofops-commissions/internal/domain/payrun"
)

const sheetName = "Statement"

// Generator writes payout statement workbooks under a configured directory.
type Generator struct {
	outputDir   string
	companyName string
	logger      *zap.Logger
}

// NewGenerator creates a new statement generator
func NewGenerator(outputDir, companyName string, logger *zap.Logger) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create statement output dir: %w", err)
	}
	return &Generator{
		outputDir:   outputDir,
		companyName: companyName,
		logger:      logger,
	}, nil
}

// Generate writes the statement for an approved commission and returns the
// file path.
func (g *Generator) Generate(req *entity.CommissionRequest) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), sheetName)

	g.setCell(f, "A1", g.companyName)
	g.setCell(f, "A2", "Commission Payout Statement")
	g.setCell(f, "A4", "Job")
	g.setCell(f, "B4", req.JobName)
	g.setCell(f, "A5", "Address")
	g.setCell(f, "B5", req.JobAddress)
	g.setCell(f, "A6", "Reference")
	g.setCell(f, "B6", req.JobReference)
	g.setCell(f, "A7", "Sales Rep")
	g.setCell(f, "B7", req.RepName)

	row := 9
	put := func(label, value string) {
		g.setCell(f, fmt.Sprintf("A%d", row), label)
		g.setCell(f, fmt.Sprintf("B%d", row), value)
		row++
	}

	if req.Variant == entity.VariantDocument {
		put("Gross Contract Total", money.FormatCurrency(req.GrossContractTotal))
		put("O&P ("+money.FormatPercent(req.OPPercent)+")", money.FormatCurrency(req.OPAmount))
		put("Contract Total Net", money.FormatCurrency(req.ContractNet))
		put("Material Cost", money.FormatCurrency(req.MaterialCost))
		put("Labor Cost", money.FormatCurrency(req.LaborCost))
		put("Net Profit", money.FormatCurrency(req.NetProfit))
		put("Rep Commission ("+money.FormatTierPercent(req.RepProfitPercent)+")", money.FormatCurrency(req.RepCommission))
		put("Company Profit", money.FormatCurrency(req.CompanyProfit))
	} else {
		put("Contract Amount", money.FormatCurrency(req.ContractAmount))
		put("Supplements Approved", money.FormatCurrency(req.SupplementsApproved))
		put("Total Job Revenue", money.FormatCurrency(req.TotalJobRevenue))
		if req.IsFlatFee {
			put("Flat Fee", money.FormatCurrency(req.FlatFeeAmount))
		} else {
			put("Gross Commission ("+req.CommissionRate.String()+"%)", money.FormatCurrency(req.GrossCommission))
		}
		put("Advances Paid", money.FormatCurrency(req.AdvancesPaid))
		put("Net Commission Owed", money.FormatCurrency(req.NetCommissionOwed))
	}

	row++
	if req.ScheduledPayDate != nil {
		put("Scheduled Pay Date", payrun.FormatDate(*req.ScheduledPayDate))
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("statement-%d.xlsx", req.ID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save statement: %w", err)
	}

	g.logger.Info("Payout statement generated",
		zap.Int64("request_id", req.ID),
		zap.String("path", path))
	return path, nil
}

func (g *Generator) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		g.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
