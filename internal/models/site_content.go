package models

import (
	"time"

	"gorm.io/datatypes"
)

// SiteContent stores one revision of the whole-site content tree as a JSON document.
// The newest row is the live tree.
type SiteContent struct {
	ID        uint           `gorm:"primarykey" json:"-"`
	Content   datatypes.JSON `gorm:"type:json;not null" json:"content"`
	UpdatedBy string         `gorm:"type:varchar(255)" json:"updated_by"`
	UpdatedAt time.Time      `json:"updated_at"`
}
