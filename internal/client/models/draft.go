package models

import "time"

// Draft is a listing being composed locally. Images is the authoritative,
// ordered list of uploaded image URLs.
type Draft struct {
	ID        string
	Title     string
	Images    []string
	ListingID string
	UpdatedAt time.Time
}

// UploadRecordStatus marks whether a remote object is still referenced.
type UploadRecordStatus string

const (
	UploadActive   UploadRecordStatus = "active"
	UploadOrphaned UploadRecordStatus = "orphaned"
)

// Upload is a ledger row describing one object stored remotely.
type Upload struct {
	PublicID  string
	DraftID   string
	URL       string
	Digest    string
	Size      int64
	Status    UploadRecordStatus
	CreatedAt time.Time
}
