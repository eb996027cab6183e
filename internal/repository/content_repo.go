package repository

import (
	"context"
	"errors"

	"shieldsite/internal/models"

	"gorm.io/gorm"
)

type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Latest returns the newest stored revision, or nil when nothing has been saved yet.
func (r *ContentRepository) Latest(ctx context.Context) (*models.SiteContent, error) {
	var content models.SiteContent
	err := r.db.WithContext(ctx).Order("updated_at desc, id desc").First(&content).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &content, nil
}

// Replace overwrites the stored document. There is a single live row; older
// revisions are removed in the same transaction.
func (r *ContentRepository) Replace(ctx context.Context, content *models.SiteContent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.SiteContent{}).Error; err != nil {
			return err
		}
		content.ID = 0
		return tx.Create(content).Error
	})
}
