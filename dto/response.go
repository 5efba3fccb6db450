package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Reconciliation compares the stated totals with the line items. It is
// informational only; a mismatch never changes the payslip.
type Reconciliation struct {
	EarningsSum     float64 `json:"earnings_sum"`
	DeductionsSum   float64 `json:"deductions_sum"`
	EarningsDelta   float64 `json:"earnings_delta"`
	DeductionsDelta float64 `json:"deductions_delta"`
	NetDelta        float64 `json:"net_delta"`
	Balanced        bool    `json:"balanced"`
}

// DocumentResult is the outcome for one file of a batch.
type DocumentResult struct {
	Filename        string           `json:"filename"`
	Payslip         *Payslip         `json:"payslip,omitempty"`
	UnknownConcepts []UnknownConcept `json:"unknown_concepts"`
	Reconciliation  *Reconciliation  `json:"reconciliation,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// TimelinePoint is one payslip reduced to the figures charted over time.
type TimelinePoint struct {
	Date       string  `json:"date"`
	Gross      float64 `json:"gross"`
	Deductions float64 `json:"deductions"`
	Net        float64 `json:"net"`
	Bonus      float64 `json:"bonus"`
}

// PayslipBatchResponse is the response for a parse request.
type PayslipBatchResponse struct {
	Documents       []DocumentResult `json:"documents"`
	Timeline        []TimelinePoint  `json:"timeline"`
	RegistryVersion string           `json:"registry_version"`
	ProcessedAt     string           `json:"processed_at"`
}

// UnknownConceptsResponse is the response for the diagnostic endpoint.
type UnknownConceptsResponse struct {
	Documents       []DocumentResult `json:"documents"`
	RegistryVersion string           `json:"registry_version"`
}

// ConceptsResponse lists the registry.
type ConceptsResponse struct {
	Version  string              `json:"version"`
	Concepts []ConceptDefinition `json:"concepts"`
}
