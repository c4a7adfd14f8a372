package calc

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldError describes a single client-correctable validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is the full list of field errors for one worksheet.
// It is an error so services can return it directly; expected bad input never
// panics.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

var one = decimal.NewFromInt(1)

// DocumentValidation carries everything the document worksheet needs checked
// beyond the raw numbers.
type DocumentValidation struct {
	JobName    string
	JobAddress string
	RepName    string
	SplitLabel string
	Inputs     DocumentInputs
}

// ValidateDocument checks a document worksheet, returning all field errors at
// once rather than stopping at the first.
func ValidateDocument(v DocumentValidation) ValidationErrors {
	var errs ValidationErrors

	errs = appendRequired(errs, "job_name", v.JobName)
	errs = appendRequired(errs, "job_address", v.JobAddress)
	errs = appendRequired(errs, "rep_name", v.RepName)

	if v.SplitLabel == "" {
		errs = append(errs, FieldError{Field: "profit_split", Message: "a profit-split label is required"})
	} else if _, err := ParseProfitSplit(v.SplitLabel); err != nil {
		errs = append(errs, FieldError{Field: "profit_split", Message: err.Error()})
	}

	errs = appendFraction(errs, "op_percent", v.Inputs.OPPercent)
	errs = appendFraction(errs, "rep_profit_percent", v.Inputs.RepProfitPercent)
	errs = appendNonNegative(errs, "material_cost", v.Inputs.MaterialCost)
	errs = appendNonNegative(errs, "labor_cost", v.Inputs.LaborCost)

	return errs
}

// SubmissionValidation carries the submission worksheet's checkable fields.
type SubmissionValidation struct {
	JobName string
	RepName string
	Inputs  SubmissionInputs
}

// ValidateSubmission checks a submission worksheet.
func ValidateSubmission(v SubmissionValidation) ValidationErrors {
	var errs ValidationErrors

	errs = appendRequired(errs, "job_name", v.JobName)
	errs = appendRequired(errs, "rep_name", v.RepName)
	errs = appendNonNegative(errs, "contract_amount", v.Inputs.ContractAmount)
	errs = appendNonNegative(errs, "supplements_approved", v.Inputs.SupplementsApproved)
	errs = appendNonNegative(errs, "advances_paid", v.Inputs.AdvancesPaid)

	if v.Inputs.IsFlatFee {
		errs = appendNonNegative(errs, "flat_fee_amount", v.Inputs.FlatFeeAmount)
	} else if v.Inputs.CommissionRate.IsNegative() || v.Inputs.CommissionRate.GreaterThan(hundred) {
		errs = append(errs, FieldError{Field: "commission_rate", Message: "must be between 0 and 100"})
	}

	return errs
}

func appendRequired(errs ValidationErrors, field, value string) ValidationErrors {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: "is required"})
	}
	return errs
}

func appendFraction(errs ValidationErrors, field string, d decimal.Decimal) ValidationErrors {
	if d.IsNegative() || d.GreaterThan(one) {
		errs = append(errs, FieldError{Field: field, Message: "must be between 0 and 1"})
	}
	return errs
}

func appendNonNegative(errs ValidationErrors, field string, d decimal.Decimal) ValidationErrors {
	if d.IsNegative() {
		errs = append(errs, FieldError{Field: field, Message: "must not be negative"})
	}
	return errs
}
