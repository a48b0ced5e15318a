package dto

// Health statuses
const (
	StatusOK          = "ok"
	StatusUnavailable = "unavailable"
)

// HealthResponse represents the /healthz response body
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
