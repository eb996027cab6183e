package models

import (
	"time"

	"gorm.io/datatypes"
)

// Known pages. The registry accepts any slug-shaped page name; these are the ones
// the public site routes.
const (
	PageAbout    = "about"
	PagePrograms = "programs"
	PageImpact   = "impact"
	PageGallery  = "gallery"
)

var KnownPages = []string{PageAbout, PagePrograms, PageImpact, PageGallery}

// Item is the one payload shape shared by timeline milestones, partner cards and
// generic cards. Which layout it gets is decided by the owning section, never by
// the item itself.
type Item struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// SectionContent is the loosely typed payload of a section. Every field is optional.
// Images, Links and Subsections are stored and returned but no layout reads them.
type SectionContent struct {
	Text        string           `json:"text,omitempty"`
	HTML        string           `json:"html,omitempty"`
	ImageURL    string           `json:"image_url,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Links       []Link           `json:"links,omitempty"`
	Items       []Item           `json:"items,omitempty"`
	Subsections []SectionContent `json:"subsections,omitempty"`
	Metadata    map[string]any   `json:"metadata,omitempty"`
}

// PageSection is one orderable block of a page, persisted on its own.
type PageSection struct {
	ID        string                             `gorm:"primarykey;type:varchar(36)" json:"id"`
	Page      string                             `gorm:"type:varchar(64);index;not null" json:"page"`
	Section   string                             `gorm:"type:varchar(128);not null" json:"section"`
	Title     string                             `gorm:"not null" json:"title"`
	Content   datatypes.JSONType[SectionContent] `gorm:"type:json" json:"content"`
	Order     int                                `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive  bool                               `gorm:"not null" json:"is_active"`
	CreatedAt time.Time                          `json:"created_at"`
	UpdatedAt time.Time                          `json:"updated_at"`
}

// Body returns the decoded section content.
func (s PageSection) Body() SectionContent {
	return s.Content.Data()
}
