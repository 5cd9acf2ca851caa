// Package backend is the request/response client for the remote authority.
// Every response arrives in a {success, data, error} envelope; failures come
// back as *APIError and never as a zero value with a nil error.
package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEnvelope means the body was not a response envelope.
var ErrMalformedEnvelope = errors.New("malformed response envelope")

type ErrorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// APIError is a failure reported by the backend, or a non-2xx status that
// carried no envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %s", e.Code)
	}
	return fmt.Sprintf("backend: %s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// Decode unwraps an envelope into T.
func Decode[T any](body []byte) (T, error) {
	var out T
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if !env.Success {
		return out, env.apiError(0)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}

func (env Envelope) apiError(status int) *APIError {
	if env.Error == nil {
		return &APIError{Status: status, Code: "unknown", Message: "request failed"}
	}
	return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message, Details: env.Error.Details}
}
