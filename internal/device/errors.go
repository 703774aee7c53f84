package device

import "fmt"

// ScanErrorKind classifies scan failures into the small vocabulary that
// survives the foreign-function boundary.
type ScanErrorKind string

const (
	AlreadyScanning    ScanErrorKind = "already_scanning"
	AdapterUnavailable ScanErrorKind = "adapter_unavailable"
	BackendStartFailed ScanErrorKind = "backend_start_failed"
	NotInitialized     ScanErrorKind = "not_initialized"
)

// ScanError represents any scan lifecycle problem
type ScanError struct {
	Kind ScanErrorKind
	Msg  string
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is allows errors.Is to compare ScanError values by Kind
func (e *ScanError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Predefined sentinel errors for scan failure kinds
var (
	ErrAlreadyScanning    = &ScanError{Kind: AlreadyScanning}
	ErrAdapterUnavailable = &ScanError{Kind: AdapterUnavailable}
	ErrBackendStart       = &ScanError{Kind: BackendStartFailed}
	ErrNotInitialized     = &ScanError{Kind: NotInitialized}
)
