package models

// WriteOutcome classifies the result of a write request.
type WriteOutcome string

const (
	WriteSucceeded  WriteOutcome = "success"
	WriteSoftFailed WriteOutcome = "soft_failure"
)

// WriteResult is the outcome of a create or patch request. A soft failure
// is a non-success status that is reported but never raised as an error.
type WriteResult struct {
	Outcome    WriteOutcome `json:"outcome"`
	StatusCode int          `json:"status_code"`
	Body       string       `json:"body,omitempty"`
}

// OK reports whether the write succeeded.
func (r WriteResult) OK() bool {
	return r.Outcome == WriteSucceeded
}

// Succeeded returns a successful write result for the given status.
func Succeeded(status int) WriteResult {
	return WriteResult{Outcome: WriteSucceeded, StatusCode: status}
}

// SoftFailure returns a failed write result carrying the response body.
func SoftFailure(status int, body string) WriteResult {
	return WriteResult{Outcome: WriteSoftFailed, StatusCode: status, Body: body}
}
