package models

import (
	"errors"
	"fmt"
)

// ErrInvalidSample marks malformed ingestion input. Samples that fail
// validation never enter the store.
var ErrInvalidSample = errors.New("invalid sentiment sample")

// RejectReason classifies risk gate rejections.
type RejectReason string

const (
	RejectExposureLimit RejectReason = "exposure_limit_exceeded"
	RejectRiskBudget    RejectReason = "risk_budget_exhausted"
	RejectQuantityMin   RejectReason = "quantity_below_minimum"
)

// RejectionError is a typed, non-fatal risk gate verdict. The caller
// logs it and waits for the next signal cycle; there is no retry.
type RejectionError struct {
	Symbol string
	Reason RejectReason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Symbol, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Symbol, e.Reason, e.Detail)
}

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
