package models

import "gorm.io/gorm"

// Setting stores a site-level key/value pair.
type Setting struct {
	gorm.Model
	Key   string `gorm:"type:varchar(255);uniqueIndex"`
	Value string `gorm:"type:text"`
}
