package analytics

import (
	"errors"
	"fmt"
)

// Diagnostic kinds. Per-row problems are reported, the row is skipped
// (or kept, for over-delivery) and processing continues.
const (
	DiagMalformedRecord       = "MALFORMED_RECORD"
	DiagInvalidValue          = "INVALID_VALUE"
	DiagOverDeliveryViolation = "OVER_DELIVERY_VIOLATION"
	DiagInsufficientData      = "INSUFFICIENT_DATA"
	DiagInsufficientHistory   = "INSUFFICIENT_HISTORY"
)

// Diagnostic describes a non-fatal problem found while building a report.
type Diagnostic struct {
	Kind   string `json:"kind"`
	RowRef string `json:"row_ref,omitempty"`
	Detail string `json:"detail"`
}

func (d Diagnostic) String() string {
	if d.RowRef == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", d.Kind, d.RowRef, d.Detail)
}

// Sentinel errors for module-level failures. These never escape Run as
// fatal errors; they are translated into report flags and diagnostics.
var (
	ErrInsufficientData    = errors.New("not enough customers for segmentation")
	ErrInsufficientHistory = errors.New("not enough non-zero months for forecasting")
)

// Fatal input errors returned by Run.
var (
	ErrEmptyOrg      = errors.New("organization id is empty")
	ErrInvalidWindow = errors.New("window end precedes window start")
)
