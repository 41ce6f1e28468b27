package tool

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dbgateway/gateway/internal/param"
	"github.com/dbgateway/gateway/internal/source"
)

// Response codes for the failure envelope.
const (
	CodeExecutionError    = "EXECUTION_ERROR"
	CodeReadOnlyViolation = "READONLY_VIOLATION"
	CodeSourceNotFound    = "SOURCE_NOT_FOUND"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeMissingParameter  = "MISSING_PARAMETER"
)

// ReadOnlyViolationError is returned when a statement fails the read-only
// classification against a readonly source. The connector is never called.
type ReadOnlyViolationError struct {
	SourceID string
	Allowed  []string
}

func (e *ReadOnlyViolationError) Error() string {
	return fmt.Sprintf("source %q is readonly; only %v statements are permitted", e.SourceID, e.Allowed)
}

// successEnvelope is the embedded JSON body for a successful invocation.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorEnvelope is the embedded JSON body for a failed invocation.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// successResult marshals data into the success envelope and wraps it as a
// non-error tool result.
func successResult(data any) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(successEnvelope{Success: true, Data: data})
	if err != nil {
		return nil, fmt.Errorf("marshal tool response: %w", err)
	}
	return mcp.NewToolResultText(string(body)), nil
}

// errorResult marshals an {success:false, error, code} envelope and marks
// the tool result as an error — still valid JSON-RPC content, never a
// protocol-level failure, so the calling LLM can read and self-correct.
func errorResult(code string, errText string) (*mcp.CallToolResult, error) {
	body, err := json.Marshal(errorEnvelope{Success: false, Error: errText, Code: code})
	if err != nil {
		return nil, fmt.Errorf("marshal tool error response: %w", err)
	}
	res := mcp.NewToolResultText(string(body))
	res.IsError = true
	return res, nil
}

// classify maps an error from the dispatch pipeline to its taxonomy code,
// for both the embedded JSON envelope and the Request Record.
func classify(err error) string {
	var notFound *source.NotFoundError
	var readonly *ReadOnlyViolationError
	var missing *param.MissingRequiredParameterError
	var unknown *param.UnknownParameterError
	var invalid *param.InvalidParamValueError
	var disallowed *param.DisallowedValueError
	var missingArg *missingArgError

	switch {
	case errors.As(err, &notFound):
		return CodeSourceNotFound
	case errors.As(err, &readonly):
		return CodeReadOnlyViolation
	case errors.As(err, &missing), errors.As(err, &missingArg):
		return CodeMissingParameter
	case errors.As(err, &unknown), errors.As(err, &invalid), errors.As(err, &disallowed):
		return CodeInvalidArgument
	default:
		return CodeExecutionError
	}
}
