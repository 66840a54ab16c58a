package mux

import (
	"encoding/json"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the Mux API.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Type       string
	Messages   []string
	Body       string
}

type errorResponse struct {
	Error struct {
		Type     string   `json:"type"`
		Messages []string `json:"messages"`
		Message  string   `json:"message"`
	} `json:"error"`
}

func newAPIError(method, endpoint string, status int, body []byte) *APIError {
	apiErr := &APIError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: status,
		Body:       string(body),
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		apiErr.Type = errResp.Error.Type
		apiErr.Messages = errResp.Error.Messages
		if errResp.Error.Message != "" {
			apiErr.Messages = append(apiErr.Messages, errResp.Error.Message)
		}
	}

	return apiErr
}

func (e *APIError) Error() string {
	detail := e.Message()
	if detail == "" {
		detail = strings.TrimSpace(e.Body)
	}
	if detail == "" {
		return fmt.Sprintf("mux api: %s %s: status %d", e.Method, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("mux api: %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, detail)
}

// Message joins the structured error messages.
func (e *APIError) Message() string {
	return strings.Join(e.Messages, "; ")
}

func (e *APIError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
