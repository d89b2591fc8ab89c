package dto

// SweepError is one item a lifecycle job could not process
type SweepError struct {
	SubscriptionID string `json:"subscription_id,omitempty"`
	AccountID      string `json:"account_id"`
	Error          string `json:"error"`
}

// SweepReport aggregates one run of a lifecycle job
type SweepReport struct {
	Job       string       `json:"job"`
	Scanned   int          `json:"scanned"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Errors    []SweepError `json:"errors,omitempty"`
}
