package remote

import "fmt"

// FailureKind classifies how a remote call went wrong.
type FailureKind int

const (
	Success FailureKind = iota
	// Timeout: the peer did not answer within the deadline.
	Timeout
	// NetworkFailure: the connection broke or was closed.
	NetworkFailure
	// MalformedMessage: the peer sent bytes that are not a JSON frame.
	MalformedMessage
	// SchemaFailure: the frame was JSON but not a legal protocol value.
	SchemaFailure
)

var failureKindNames = map[FailureKind]string{
	Success:          "SUCCESS",
	Timeout:          "TIMEOUT",
	NetworkFailure:   "NETWORK_FAILURE",
	MalformedMessage: "MALFORMED_MESSAGE",
	SchemaFailure:    "SCHEMA_FAILURE",
}

func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// CallFailure is a failed remote interaction: what was being called and how
// it failed.
type CallFailure struct {
	Kind   FailureKind
	Method string
	Cause  error
}

func (f *CallFailure) Error() string {
	if f.Cause == nil {
		return fmt.Sprintf("%s call failed: %s", f.Method, f.Kind)
	}
	return fmt.Sprintf("%s call failed: %s: %v", f.Method, f.Kind, f.Cause)
}

func (f *CallFailure) Unwrap() error { return f.Cause }

func failure(kind FailureKind, method string, cause error) *CallFailure {
	return &CallFailure{Kind: kind, Method: method, Cause: cause}
}
