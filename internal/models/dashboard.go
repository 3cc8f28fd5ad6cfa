package models

import "time"

// DashboardSummary is the cached money-flow and workload overview.
type DashboardSummary struct {
	Students           int     `json:"students"`
	Writers            int     `json:"writers"`
	Universities       int     `json:"universities"`
	Assignments        int     `json:"assignments"`
	Completed          int     `json:"completed"`
	Receivable         float64 `json:"receivable"`
	WriterPayable      float64 `json:"writerPayable"`
	SunkCosts          float64 `json:"sunkCosts"`
	CollectedPayments  float64 `json:"collectedPayments"`
	WriterDisbursement float64 `json:"writerDisbursement"`

	GeneratedAt time.Time `json:"generatedAt"`
}
