package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"shieldsite/internal/models"
	"shieldsite/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrSectionNotFound = errors.New("page section not found")

// SectionInput carries the fields of a new section. Section may be left empty, in
// which case it is derived from the title.
type SectionInput struct {
	Page     string                `json:"page"`
	Section  string                `json:"section"`
	Title    string                `json:"title"`
	Content  models.SectionContent `json:"content"`
	Order    int                   `json:"order"`
	IsActive *bool                 `json:"is_active"`
}

func (in SectionInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Page, validation.Required, validation.Length(1, 64), validation.By(isSlug)),
		validation.Field(&in.Section, validation.Required, validation.Length(1, 128)),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 255)),
	)
}

// SectionPatch carries a partial update. Nil fields are left as stored; page and
// section identifiers cannot be changed.
type SectionPatch struct {
	Title    *string                `json:"title"`
	Content  *models.SectionContent `json:"content"`
	Order    *int                   `json:"order"`
	IsActive *bool                  `json:"is_active"`
}

func (p SectionPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

func (p SectionPatch) fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = datatypes.NewJSONType(*p.Content)
	}
	if p.Order != nil {
		fields["sort_order"] = *p.Order
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	return fields
}

// SectionService is the registry of page sections. Every write goes straight to
// storage; nothing is staged.
type SectionService struct {
	repo *repository.SectionRepository
}

func NewSectionService(repo *repository.SectionRepository) *SectionService {
	return &SectionService{repo: repo}
}

// List returns all sections of page, inactive ones included, ascending by order.
func (s *SectionService) List(ctx context.Context, page string) ([]models.PageSection, error) {
	sections, err := s.repo.FindByPage(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list sections for %s: %w", page, err)
	}
	return sections, nil
}

// ListActive is the public read: active sections only, and a storage failure
// degrades to an empty list.
func (s *SectionService) ListActive(ctx context.Context, page string) []models.PageSection {
	sections, err := s.repo.FindActiveByPage(ctx, page)
	if err != nil {
		log.Printf("failed to load sections for %s, rendering none: %v", page, err)
		return []models.PageSection{}
	}
	return sections
}

func (s *SectionService) Get(ctx context.Context, id string) (*models.PageSection, error) {
	section, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	return section, nil
}

// Create assigns an id and stores the section. Other sections keep their order.
func (s *SectionService) Create(ctx context.Context, in SectionInput) (*models.PageSection, error) {
	in.Page = strings.TrimSpace(in.Page)
	in.Section = strings.TrimSpace(in.Section)
	if in.Section == "" {
		in.Section = SectionKey(in.Title)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	section := &models.PageSection{
		ID:       uuid.NewString(),
		Page:     in.Page,
		Section:  in.Section,
		Title:    in.Title,
		Content:  datatypes.NewJSONType(in.Content),
		Order:    in.Order,
		IsActive: isActive,
	}
	if err := s.repo.Create(ctx, section); err != nil {
		return nil, fmt.Errorf("%w: create section: %w", ErrPersistence, err)
	}
	log.Printf("page section created: %s/%s (%s)", section.Page, section.Section, section.ID)
	return section, nil
}

// Update applies only the supplied fields.
func (s *SectionService) Update(ctx context.Context, id string, patch SectionPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	fields := patch.fields()
	if len(fields) == 0 {
		_, err := s.Get(ctx, id)
		return err
	}
	n, err := s.repo.UpdateFields(ctx, id, fields)
	if err != nil {
		return fmt.Errorf("%w: update section: %w", ErrPersistence, err)
	}
	if n == 0 {
		return ErrSectionNotFound
	}
	log.Printf("page section updated: %s", id)
	return nil
}

// Delete removes the section for good.
func (s *SectionService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete section: %w", ErrPersistence, err)
	}
	if n == 0 {
		return ErrSectionNotFound
	}
	log.Printf("page section deleted: %s", id)
	return nil
}

// SectionKey derives a discriminator from a display title: "Our Journey" becomes
// "our_journey".
func SectionKey(title string) string {
	return strings.ReplaceAll(slug.Make(title), "-", "_")
}

func isSlug(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !slug.IsSlug(s) {
		return errors.New("must be lowercase letters, digits and hyphens")
	}
	return nil
}
