package model

import (
	"github.com/google/uuid"
)

// XRayImage is the metadata row for one stored X-ray blob. The blob lives in
// the object store under FilePath; deletion removes the blob before the row.
type XRayImage struct {
	Base
	PatientID  uuid.UUID `json:"patient_id" db:"patient_id"`
	FilePath   string    `json:"file_path" db:"file_path"`
	FileSize   int64     `json:"file_size" db:"file_size"`
	MimeType   string    `json:"mime_type" db:"mime_type"`
	ImageType  string    `json:"image_type" db:"image_type"`
	BodyPart   *string   `json:"body_part" db:"body_part"`
	Notes      *string   `json:"notes" db:"notes"`
	UploadedBy uuid.UUID `json:"uploaded_by" db:"uploaded_by"`
	PublicURL  string    `json:"public_url" db:"public_url"`
}

type UpdateImageRequest struct {
	ImageType *string `json:"imageType"`
	BodyPart  *string `json:"bodyPart"`
	Notes     *string `json:"notes"`
}

// ImageFilters represents image list parameters.
type ImageFilters struct {
	PatientID *uuid.UUID
	ImageType string
	Limit     int
	Offset    int
}

// ImageStats is the /stats/overview payload.
type ImageStats struct {
	Total      int            `json:"total"`
	TotalBytes int64          `json:"total_bytes"`
	ByType     map[string]int `json:"by_type"`
}
