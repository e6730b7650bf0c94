// Package types holds the wire shapes shared between the response writers
// and their tests.
package types

// SuccessEnvelope wraps every 2xx JSON body.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details carries structured
// context (validation fields, license failure reason) only for codes that
// allow message passthrough.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps every error JSON body.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
