package models

import "time"

type MediaCategory string

const (
	CategoryLocation MediaCategory = "location"
	CategoryCast     MediaCategory = "cast"
	CategoryProps    MediaCategory = "props"
	CategoryScript   MediaCategory = "script"
	CategoryOther    MediaCategory = "other"
)

var MediaCategories = []MediaCategory{CategoryLocation, CategoryCast, CategoryProps, CategoryScript, CategoryOther}

// MediaAsset is an uploaded file attached to a project. The blob itself lives
// in the configured storage provider under Filename.
type MediaAsset struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	ProjectID    uint          `gorm:"not null;index" json:"projectId"`
	Filename     string        `gorm:"size:255;not null;uniqueIndex" json:"filename"`
	OriginalName string        `gorm:"size:255" json:"originalName"`
	Type         string        `gorm:"size:20;not null" json:"type"` // image, video, document
	MimeType     string        `gorm:"size:100" json:"mimeType"`
	Category     MediaCategory `gorm:"size:20;not null;index" json:"category"`
	Description  string        `gorm:"type:text" json:"description"`
	Size         int64         `gorm:"not null" json:"size"`
	URL          string        `gorm:"size:500" json:"url"`
	UploadedBy   uint          `json:"uploadedBy"`
	UploadedAt   time.Time     `json:"uploadedAt"`
}

func (MediaAsset) TableName() string { return "media_assets" }
