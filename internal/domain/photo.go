package domain

import "time"

// Photo is an image attached to a unit stage. Path is the object key inside
// the photos bucket.
type Photo struct {
	ID          string
	UnitStageID string
	Path        string
	Caption     string
	Kind        string
	ContentType string
	Size        int64
	UploadedBy  string
	CreatedAt   time.Time
}

// PhotoKindGeneral is used when the uploader does not classify a photo.
const PhotoKindGeneral = "general"
