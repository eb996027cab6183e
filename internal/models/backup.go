package models

// SiteBackup is the archive format written by the backup service.
type SiteBackup struct {
	Content  map[string]any    `json:"content"`
	Sections []PageSection     `json:"sections"`
	Settings map[string]string `json:"settings"`
}
