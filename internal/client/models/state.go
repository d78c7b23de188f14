package models

// SlotStatus is the lifecycle position of one visible upload slot.
type SlotStatus string

const (
	SlotUploading SlotStatus = "uploading"
	SlotSucceeded SlotStatus = "succeeded"
	SlotFailed    SlotStatus = "failed"
)

// UploadState is the visible state of one slot. Exactly one of Uploading,
// URL and Error is the active fact; Status names which.
type UploadState struct {
	ID        string
	Name      string
	URL       string
	PublicID  string
	Uploading bool
	Progress  int
	Error     string
	Status    SlotStatus
}

// Terminal reports whether the slot reached success or failure.
func (s UploadState) Terminal() bool {
	return s.Status == SlotSucceeded || s.Status == SlotFailed
}
