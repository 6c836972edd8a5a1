package llm

import "fmt"

// FailureKind classifies why a generation call did not produce a usable result.
type FailureKind string

const (
	// FailureConfig: the client has no credential (or no prompt). Never retried.
	FailureConfig FailureKind = "CONFIG_ERROR"
	// FailureParse: the call succeeded but the payload did not match the
	// expected shape. Never retried.
	FailureParse FailureKind = "PARSE_ERROR"
	// FailureUnavailable: transport/server error, surfaced after retries ran out.
	FailureUnavailable FailureKind = "LLM_UNAVAILABLE"
)

// Failure carries the standardized error block of a failed call.
// Message is safe to show to end users; Raw is for diagnostics only.
type Failure struct {
	Kind       FailureKind `json:"type"`
	Message    string      `json:"message"`
	StatusCode *int        `json:"status_code"`
	Raw        string      `json:"raw"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Outcome is the tagged result of Execute: exactly one of Text (plus a decoded
// Request.Out, if a shape was requested) or Failure is meaningful.
type Outcome struct {
	Success bool
	Text    string
	Failure *Failure
}

func failure(kind FailureKind, message string, statusCode *int, raw string) Outcome {
	return Outcome{Failure: &Failure{
		Kind:       kind,
		Message:    message,
		StatusCode: statusCode,
		Raw:        raw,
	}}
}
