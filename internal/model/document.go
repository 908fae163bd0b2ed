package model

import "time"

// MedicalDocument is a file attached to a timeline event.
// The raw payload is not part of the struct; it lives in payload storage under StorageKey.
type MedicalDocument struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	StorageKey  string    `json:"storage_key"`
	Size        int64     `json:"size"`
	UploadDate  time.Time `json:"upload_date"`
}

// IsImage reports whether the document carries visual content.
func (d MedicalDocument) IsImage() bool {
	return IsImageType(d.ContentType)
}

// Attachment describes an uploaded payload that should become a MedicalDocument
// when its event is inserted.
type Attachment struct {
	Name        string
	ContentType string
	StorageKey  string
	Size        int64
}
