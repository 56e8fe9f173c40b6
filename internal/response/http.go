// Package response holds the JSON envelopes shared by every API handler.
// Success payloads wrap their data in APIResponse so clients always see the
// same top-level shape regardless of endpoint.
package response

type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
