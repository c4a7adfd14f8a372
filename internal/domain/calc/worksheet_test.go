package calc

import "testing"

func TestComputeSubmission(t *testing.T) {
	tests := []struct {
		name        string
		in          SubmissionInputs
		wantRevenue string
		wantGross   string
		wantNetOwed string
	}{
		{
			name: "contract plus supplements, no advances",
			in: SubmissionInputs{
				ContractAmount:      d("18000"),
				SupplementsApproved: d("2000"),
				CommissionRate:      d("15"),
			},
			wantRevenue: "20000",
			wantGross:   "3000",
			wantNetOwed: "3000",
		},
		{
			name: "advances deducted",
			in: SubmissionInputs{
				ContractAmount: d("35000"),
				CommissionRate: d("10"),
				AdvancesPaid:   d("1500"),
			},
			wantRevenue: "35000",
			wantGross:   "3500",
			wantNetOwed: "2000",
		},
		{
			name: "advances exceed gross commission",
			in: SubmissionInputs{
				ContractAmount: d("10000"),
				CommissionRate: d("10"),
				AdvancesPaid:   d("1500"),
			},
			wantRevenue: "10000",
			wantGross:   "1000",
			wantNetOwed: "-500",
		},
		{
			name: "flat fee ignores the percentage",
			in: SubmissionInputs{
				ContractAmount: d("50000"),
				CommissionRate: d("15"),
				IsFlatFee:      true,
				FlatFeeAmount:  d("2500"),
				AdvancesPaid:   d("500"),
			},
			wantRevenue: "50000",
			wantGross:   "2500",
			wantNetOwed: "2000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ComputeSubmission(tt.in)

			if !out.TotalJobRevenue.Equal(d(tt.wantRevenue)) {
				t.Errorf("TotalJobRevenue = %s, want %s", out.TotalJobRevenue, tt.wantRevenue)
			}
			if !out.GrossCommission.Equal(d(tt.wantGross)) {
				t.Errorf("GrossCommission = %s, want %s", out.GrossCommission, tt.wantGross)
			}
			if !out.NetCommissionOwed.Equal(d(tt.wantNetOwed)) {
				t.Errorf("NetCommissionOwed = %s, want %s", out.NetCommissionOwed, tt.wantNetOwed)
			}
		})
	}
}
