package models

import "time"

// AlertDismissAfter is how long the browser shell keeps an alert visible.
var AlertDismissAfter = 5 * time.Second

// Alert is a transient user-facing message.
type Alert struct {
	Variant        string `json:"variant"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	DismissAfterMs int64  `json:"dismiss_after_ms"`
}

// ErrorAlert builds an error alert.
func ErrorAlert(message string) Alert {
	return Alert{Variant: "error", Title: "Error", Message: message, DismissAfterMs: AlertDismissAfter.Milliseconds()}
}

// SuccessAlert builds a success alert.
func SuccessAlert(message string) Alert {
	return Alert{Variant: "success", Title: "Success", Message: message, DismissAfterMs: AlertDismissAfter.Milliseconds()}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int   `json:"total_count"`
	TotalPages int   `json:"total_pages"`
	PageSizes  []int `json:"page_sizes,omitempty"`
}

// MetricsSnapshot summarises the dashboard's own instrumentation.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	BackendCalls             uint64    `json:"backend_calls"`
	BackendFailures          uint64    `json:"backend_failures"`
	AverageBackendDurationMs float64   `json:"average_backend_duration_ms"`
	SessionHitRatio          float64   `json:"session_hit_ratio"`
	Submissions              uint64    `json:"submissions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
