package http

// Request/Response types
type ErrorResponse struct {
	Error string `json:"error"`
}
