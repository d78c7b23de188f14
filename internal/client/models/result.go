package models

// FailureReason classifies why an upload did not succeed.
type FailureReason string

const (
	ReasonConfiguration     FailureReason = "configuration"
	ReasonValidation        FailureReason = "validation"
	ReasonNetwork           FailureReason = "network"
	ReasonStatus            FailureReason = "status"
	ReasonMalformedResponse FailureReason = "malformed_response"
	ReasonCancelled         FailureReason = "cancelled"
	// ReasonInternal marks a pipeline that failed unexpectedly.
	ReasonInternal FailureReason = "internal"
)

// UploadError is the failure variant of UploadResult.
type UploadError struct {
	Reason FailureReason
	// StatusCode is set for ReasonStatus.
	StatusCode int
	Message    string
}

func (e *UploadError) Error() string {
	return e.Message
}

// UploadResult is the terminal outcome of one transport call. Exactly one
// variant is populated: URL and PublicID on success, Err on failure.
type UploadResult struct {
	URL      string
	PublicID string
	Err      *UploadError
}

// Succeeded builds the success variant. An empty url cannot describe a
// usable image and is turned into a malformed-response failure.
func Succeeded(url, publicID string) UploadResult {
	if url == "" {
		return Failed(ReasonMalformedResponse, "Upload response did not include a URL")
	}
	return UploadResult{URL: url, PublicID: publicID}
}

// Failed builds the failure variant.
func Failed(reason FailureReason, message string) UploadResult {
	return UploadResult{Err: &UploadError{Reason: reason, Message: message}}
}

// FailedStatus builds a ReasonStatus failure carrying the HTTP status code.
func FailedStatus(code int, message string) UploadResult {
	return UploadResult{Err: &UploadError{Reason: ReasonStatus, StatusCode: code, Message: message}}
}

// Success reports whether r is the success variant.
func (r UploadResult) Success() bool {
	return r.Err == nil
}

// ErrorMessage returns the failure message, or "" on success.
func (r UploadResult) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Message
}
