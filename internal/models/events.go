package models

import "time"

// Event types
const (
	EventTypeReportGenerated = "REPORT_GENERATED"
	EventTypeReportFailed    = "REPORT_FAILED"
	EventTypeOrderUpserted   = "ORDER_UPSERTED"
	EventTypeOrderDeleted    = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportGeneratedEvent published after an analytics report is built
type ReportGeneratedEvent struct {
	BaseEvent
	ReportID    string    `json:"report_id"`
	Org         string    `json:"org"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	OrderCount  int       `json:"order_count"`
	SkippedRows int       `json:"skipped_rows"`
	DurationMS  int64     `json:"duration_ms"`
}

// ReportFailedEvent published when a report cannot be built at all
type ReportFailedEvent struct {
	BaseEvent
	Org    string `json:"org"`
	Reason string `json:"reason"`
}

// OrderMutatedEvent is emitted by the order CRUD system whenever an
// order is created, edited or deleted. The analytics service only uses
// it to drop the organization's cached rows.
type OrderMutatedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Org     string `json:"org"`
}
