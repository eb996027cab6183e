package repository

import (
	"context"

	"shieldsite/internal/models"

	"gorm.io/gorm"
)

type SectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByPage returns every section of a page, ascending by order. Ties keep
// insertion order through SQLite's rowid.
func (r *SectionRepository) FindByPage(ctx context.Context, page string) ([]models.PageSection, error) {
	var sections []models.PageSection
	err := r.db.WithContext(ctx).
		Where("page = ?", page).
		Order("sort_order asc, rowid asc").
		Find(&sections).Error
	return sections, err
}

// FindActiveByPage is FindByPage restricted to active sections.
func (r *SectionRepository) FindActiveByPage(ctx context.Context, page string) ([]models.PageSection, error) {
	var sections []models.PageSection
	err := r.db.WithContext(ctx).
		Where("page = ? AND is_active = ?", page, true).
		Order("sort_order asc, rowid asc").
		Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.PageSection, error) {
	var section models.PageSection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&section).Error
	return &section, err
}

func (r *SectionRepository) FindAll(ctx context.Context) ([]models.PageSection, error) {
	var sections []models.PageSection
	err := r.db.WithContext(ctx).Order("page asc, sort_order asc, rowid asc").Find(&sections).Error
	return sections, err
}

func (r *SectionRepository) Create(ctx context.Context, section *models.PageSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

// UpdateFields applies a partial update and reports how many rows matched.
func (r *SectionRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.PageSection{}).Where("id = ?", id).Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *SectionRepository) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PageSection{})
	return result.RowsAffected, result.Error
}

// ReplaceAll drops every section and inserts the given ones, keeping their ids.
func (r *SectionRepository) ReplaceAll(ctx context.Context, sections []models.PageSection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PageSection{}).Error; err != nil {
			return err
		}
		if len(sections) == 0 {
			return nil
		}
		return tx.Create(&sections).Error
	})
}

func (r *SectionRepository) GetDB() *gorm.DB {
	return r.db
}
