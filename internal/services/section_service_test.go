package services

import (
	"context"
	"errors"
	"testing"

	"shieldsite/internal/models"
	"shieldsite/internal/repository"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func newSectionService(t *testing.T) *SectionService {
	t.Helper()
	return NewSectionService(repository.NewSectionRepository(openTestDB(t)))
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func mustCreate(t *testing.T, svc *SectionService, in SectionInput) *models.PageSection {
	t.Helper()
	s, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create(%+v): %v", in, err)
	}
	return s
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	svc := newSectionService(t)
	s := mustCreate(t, svc, SectionInput{
		Page:    "about",
		Section: "partners",
		Title:   "Our Partners",
		Content: models.SectionContent{Items: []models.Item{{Title: "Org A", Description: "desc"}}},
	})
	if s.ID == "" {
		t.Fatal("id not assigned")
	}
	if !s.IsActive {
		t.Error("sections are active unless stated otherwise")
	}

	got, err := svc.Get(context.Background(), s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if items := got.Body().Items; len(items) != 1 || items[0].Title != "Org A" {
		t.Errorf("content round trip lost items: %+v", got.Body())
	}
}

func TestCreateDerivesSectionFromTitle(t *testing.T) {
	svc := newSectionService(t)
	s := mustCreate(t, svc, SectionInput{Page: "programs", Title: "Senior Citizen Care"})
	if s.Section != "senior_citizen_care" {
		t.Errorf("section = %q", s.Section)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newSectionService(t)
	cases := map[string]SectionInput{
		"missing page":  {Section: "x", Title: "T"},
		"bad page":      {Page: "About Us", Section: "x", Title: "T"},
		"missing title": {Page: "about", Section: "x"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("err = %v, want validation errors", err)
			}
		})
	}
}

func TestListOrdersByOrderThenInsertion(t *testing.T) {
	ctx := context.Background()
	svc := newSectionService(t)
	mustCreate(t, svc, SectionInput{Page: "about", Section: "c", Title: "C", Order: 2})
	mustCreate(t, svc, SectionInput{Page: "about", Section: "a", Title: "A", Order: 1})
	mustCreate(t, svc, SectionInput{Page: "about", Section: "b", Title: "B", Order: 1, IsActive: boolPtr(false)})
	mustCreate(t, svc, SectionInput{Page: "programs", Section: "other", Title: "Other"})

	sections, err := svc.List(ctx, "about")
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, s := range sections {
		got = append(got, s.Section)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	active := svc.ListActive(ctx, "about")
	if len(active) != 2 {
		t.Errorf("ListActive returned %d sections, want 2", len(active))
	}
}

func TestListUnknownPageIsEmpty(t *testing.T) {
	sections, err := newSectionService(t).List(context.Background(), "nowhere")
	if err != nil || len(sections) != 0 {
		t.Errorf("List = %v, %v", sections, err)
	}
}

func TestUpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	svc := newSectionService(t)
	s := mustCreate(t, svc, SectionInput{
		Page: "impact", Section: "community", Title: "Community",
		Content: models.SectionContent{Text: "keep"},
		Order:   3,
	})

	if err := svc.Update(ctx, s.ID, SectionPatch{Title: strPtr("Renamed"), IsActive: boolPtr(false)}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Get(ctx, s.ID)
	if got.Title != "Renamed" || got.IsActive {
		t.Errorf("supplied fields not applied: %+v", got)
	}
	if got.Order != 3 || got.Body().Text != "keep" || got.Page != "impact" || got.Section != "community" {
		t.Errorf("unsupplied fields changed: %+v", got)
	}

	if err := svc.Update(ctx, s.ID, SectionPatch{Order: intPtr(0), Content: &models.SectionContent{HTML: "<b>x</b>"}}); err != nil {
		t.Fatal(err)
	}
	got, _ = svc.Get(ctx, s.ID)
	if got.Order != 0 || got.Body().HTML != "<b>x</b>" || got.Body().Text != "" {
		t.Errorf("content replace / zero order failed: %+v", got)
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	ctx := context.Background()
	svc := newSectionService(t)
	if err := svc.Update(ctx, "nope", SectionPatch{Title: strPtr("x")}); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("Update missing err = %v", err)
	}
	if err := svc.Update(ctx, "nope", SectionPatch{}); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("empty Update missing err = %v", err)
	}
	if err := svc.Delete(ctx, "nope"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("Delete missing err = %v", err)
	}
	if err := svc.Update(ctx, "nope", SectionPatch{Title: strPtr("")}); err == nil {
		t.Error("blank title should fail validation")
	}
}

func TestDeleteIsPermanent(t *testing.T) {
	ctx := context.Background()
	svc := newSectionService(t)
	s := mustCreate(t, svc, SectionInput{Page: "about", Section: "journey", Title: "Journey"})
	if err := svc.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, s.ID); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if err := svc.Delete(ctx, s.ID); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestSectionKey(t *testing.T) {
	cases := map[string]string{
		"Our Journey":         "our_journey",
		"Senior Citizen Care": "senior_citizen_care",
		"":                    "",
	}
	for title, want := range cases {
		if got := SectionKey(title); got != want {
			t.Errorf("SectionKey(%q) = %q, want %q", title, got, want)
		}
	}
}
