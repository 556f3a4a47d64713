package types

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// StatItem is one entry of the stats endpoint.
type StatItem struct {
	Title string  `json:"title"`
	Value float64 `json:"value"`
}
