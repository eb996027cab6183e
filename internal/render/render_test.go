package render

import (
	"strings"
	"testing"

	"shieldsite/internal/models"

	"github.com/PuerkitoBio/goquery"
	"gorm.io/datatypes"
)

func section(id, discriminator, title string, content models.SectionContent, active bool) models.PageSection {
	return models.PageSection{
		ID:       id,
		Page:     models.PageAbout,
		Section:  discriminator,
		Title:    title,
		Content:  datatypes.NewJSONType(content),
		IsActive: active,
	}
}

func renderDoc(t *testing.T, r *Renderer, sections ...models.PageSection) *goquery.Document {
	t.Helper()
	var sb strings.Builder
	if err := r.Render(&sb, sections); err != nil {
		t.Fatalf("Render: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	return doc
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestStrategyFor(t *testing.T) {
	cases := map[string]Strategy{
		"journey":      Timeline,
		"partners":     Grid,
		"overview":     Generic,
		"unknown_type": Generic,
		"":             Generic,
		"Journey":      Generic,
	}
	for discriminator, want := range cases {
		if got := StrategyFor(discriminator); got != want {
			t.Errorf("StrategyFor(%q) = %v, want %v", discriminator, got, want)
		}
	}
	if !Timeline.IsTimeline() || Timeline.IsGrid() || !Grid.IsGrid() || Generic.IsTimeline() || Generic.IsGrid() {
		t.Error("IsTimeline/IsGrid disagree with the enum")
	}
}

func TestUnknownDiscriminatorRendersHeadingOnly(t *testing.T) {
	doc := renderDoc(t, newRenderer(t), section("s1", "unknown_type", "X", models.SectionContent{}, true))

	sel := doc.Find("section.section--generic")
	if sel.Length() != 1 {
		t.Fatalf("want one generic section, got %d", sel.Length())
	}
	if got := strings.TrimSpace(sel.Find("h2").Text()); got != "X" {
		t.Errorf("heading = %q", got)
	}
	for _, absent := range []string{".grid", "img", ".section-text", ".section-html", "figure"} {
		if n := sel.Find(absent).Length(); n != 0 {
			t.Errorf("%s should be absent, found %d", absent, n)
		}
	}
}

func TestInactiveSectionsAreNotRendered(t *testing.T) {
	items := []models.Item{{Title: "2018 - Start"}}
	doc := renderDoc(t, newRenderer(t),
		section("a", "journey", "Journey", models.SectionContent{Items: items}, false),
		section("b", "partners", "Partners", models.SectionContent{Items: items}, false),
		section("c", "overview", "Overview", models.SectionContent{Text: "shown"}, true),
	)
	if n := doc.Find("section").Length(); n != 1 {
		t.Fatalf("want 1 rendered section, got %d", n)
	}
	if doc.Find("#section-a").Length() != 0 || doc.Find("#section-b").Length() != 0 {
		t.Error("inactive sections leaked into the output")
	}
}

func TestJourneyTitleSplit(t *testing.T) {
	content := models.SectionContent{
		Items: []models.Item{
			{Title: "Step 1 - Foundation Established", Description: "first"},
			{Title: "No Delimiter Here", Description: "second"},
		},
	}
	doc := renderDoc(t, newRenderer(t), section("j", "journey", "Our Journey", content, true))

	items := doc.Find("section.section--timeline .timeline-item")
	if items.Length() != 2 {
		t.Fatalf("want 2 timeline items, got %d", items.Length())
	}
	want := []struct{ badge, heading, side string }{
		{"Step 1", "Foundation Established", "timeline-item--left"},
		{"Step 2", "No Delimiter Here", "timeline-item--right"},
	}
	items.Each(func(i int, s *goquery.Selection) {
		if got := strings.TrimSpace(s.Find(".badge").Text()); got != want[i].badge {
			t.Errorf("item %d badge = %q, want %q", i, got, want[i].badge)
		}
		if got := strings.TrimSpace(s.Find(".milestone-heading").Text()); got != want[i].heading {
			t.Errorf("item %d heading = %q, want %q", i, got, want[i].heading)
		}
		if !s.HasClass(want[i].side) {
			t.Errorf("item %d should have class %s", i, want[i].side)
		}
	})
	if doc.Find(".timeline-line").Length() != 1 {
		t.Error("timeline should draw its centre line")
	}

	// A blank item is not drawn but still holds its step number.
	gapped := models.SectionContent{
		Items: []models.Item{
			{Title: "  "},
			{Title: "No Delimiter Here"},
		},
	}
	doc = renderDoc(t, newRenderer(t), section("g", "journey", "Our Journey", gapped, true))
	badges := doc.Find("#section-g .badge")
	if badges.Length() != 1 {
		t.Fatalf("want 1 drawn milestone, got %d", badges.Length())
	}
	if got := strings.TrimSpace(badges.Text()); got != "Step 2" {
		t.Errorf("badge after a blank item = %q, want %q", got, "Step 2")
	}
}

func TestSplitMilestoneTitle(t *testing.T) {
	cases := []struct {
		title          string
		index          int
		badge, heading string
	}{
		{"2018 - Foundation Established", 0, "2018", "Foundation Established"},
		{"No Delimiter Here", 4, "Step 5", "No Delimiter Here"},
		{"2020 - Senior Care - Dharavi", 0, "2020", "Senior Care - Dharavi"},
		{" - Headless", 2, "Step 3", "Headless"},
		{"2024 - ", 1, "2024", "2024 - "},
		{"", 0, "Step 1", ""},
		{"2019-No Spaces", 0, "Step 1", "2019-No Spaces"},
	}
	for _, tc := range cases {
		badge, heading := SplitMilestoneTitle(tc.title, tc.index)
		if badge != tc.badge || heading != tc.heading {
			t.Errorf("SplitMilestoneTitle(%q, %d) = (%q, %q), want (%q, %q)",
				tc.title, tc.index, badge, heading, tc.badge, tc.heading)
		}
	}
}

func TestPartnersRenderAsGrid(t *testing.T) {
	content := models.SectionContent{
		Text:  "We collaborate",
		Items: []models.Item{{Title: "Org A - Mumbai", Description: "desc"}, {Title: "Org B"}},
	}
	doc := renderDoc(t, newRenderer(t), section("p", "partners", "Our Partners", content, true))

	if doc.Find(".timeline").Length() != 0 {
		t.Fatal("partners must not use the timeline layout")
	}
	cards := doc.Find("section.section--grid .grid .card")
	if cards.Length() != 2 {
		t.Fatalf("want 2 cards, got %d", cards.Length())
	}
	if got := strings.TrimSpace(cards.First().Find(".card-title").Text()); got != "Org A - Mumbai" {
		t.Errorf("grid titles are not split, got %q", got)
	}
	if doc.Find(".badge").Length() != 0 {
		t.Error("grid cards carry no badge")
	}
}

func TestSameItemShapeAcrossLayouts(t *testing.T) {
	items := []models.Item{{Title: "2018 - Started", Description: "d", ImageURL: "https://img/1.png"}}
	doc := renderDoc(t, newRenderer(t),
		section("t", "journey", "T", models.SectionContent{Items: items}, true),
		section("g", "partners", "G", models.SectionContent{Items: items}, true),
		section("c", "features", "C", models.SectionContent{Items: items}, true),
	)
	if doc.Find("#section-t .milestone").Length() != 1 {
		t.Error("timeline should render the item as a milestone")
	}
	if doc.Find("#section-g .grid--partners .card").Length() != 1 {
		t.Error("grid should render the item as a partner card")
	}
	generic := doc.Find("#section-c .grid--cards .card")
	if generic.Length() != 1 {
		t.Fatal("generic should render the item as a card")
	}
	if src, _ := generic.Find("img.card-image").Attr("src"); src != "https://img/1.png" {
		t.Errorf("generic card image = %q", src)
	}
}

func TestGenericRendersPresentFieldsInOrder(t *testing.T) {
	content := models.SectionContent{
		Text:     "Paragraph",
		HTML:     "<ul><li>raw</li></ul>",
		ImageURL: "https://img/feature.jpg",
		Items:    []models.Item{{Title: "Card"}},
		Images:   []string{"https://img/unused.jpg"},
		Links:    []models.Link{{Label: "unused", URL: "https://example.org"}},
	}
	doc := renderDoc(t, newRenderer(t), section("g", "youth_skilling", "Youth", content, true))
	sel := doc.Find("section.section--generic")

	var order []string
	sel.Children().Each(func(_ int, s *goquery.Selection) {
		class, _ := s.Attr("class")
		order = append(order, class)
	})
	want := []string{"section-header", "section-text", "section-html", "section-image", "grid grid--cards"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("block order = %v, want %v", order, want)
	}
	if sel.Find(".section-html li").Text() != "raw" {
		t.Error("html content should be emitted unescaped")
	}
	if sel.Find("a").Length() != 0 || sel.Find(`img[src="https://img/unused.jpg"]`).Length() != 0 {
		t.Error("links and images have no layout")
	}
}

func TestEmptyItemsOmitGrid(t *testing.T) {
	cases := map[string]models.SectionContent{
		"absent":     {Text: "only text"},
		"empty":      {Text: "only text", Items: []models.Item{}},
		"blank item": {Text: "only text", Items: []models.Item{{Title: "  "}}},
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			for _, discriminator := range []string{"journey", "partners", "other"} {
				doc := renderDoc(t, newRenderer(t), section("s", discriminator, "Title", content, true))
				if doc.Find(".grid, .timeline").Length() != 0 {
					t.Errorf("%s: empty items should render no grid or timeline", discriminator)
				}
				if strings.TrimSpace(doc.Find(".section-text").Text()) != "only text" {
					t.Errorf("%s: text should still render", discriminator)
				}
			}
		})
	}
}

func TestUntitledSectionsHaveNoHeader(t *testing.T) {
	items := []models.Item{{Title: "2018 - Start"}}
	for _, discriminator := range []string{"journey", "partners", "other"} {
		doc := renderDoc(t, newRenderer(t), section("u", discriminator, "  ", models.SectionContent{Items: items}, true))
		if n := doc.Find("header").Length(); n != 0 {
			t.Errorf("%s: untitled section rendered %d headers", discriminator, n)
		}
		if doc.Find("section").Length() != 1 {
			t.Errorf("%s: section body should still render", discriminator)
		}
	}
}

func TestTextIsEscaped(t *testing.T) {
	content := models.SectionContent{Text: "<script>alert(1)</script>"}
	doc := renderDoc(t, newRenderer(t), section("s", "other", "T", content, true))
	if doc.Find("script").Length() != 0 {
		t.Error("plain text must be escaped")
	}
}

func TestRenderKeepsGivenOrder(t *testing.T) {
	first := section("z", "other", "First", models.SectionContent{}, true)
	first.Order = 9
	second := section("a", "other", "Second", models.SectionContent{}, true)
	second.Order = 1
	doc := renderDoc(t, newRenderer(t), first, second)

	var titles []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) { titles = append(titles, s.Text()) })
	if strings.Join(titles, ",") != "First,Second" {
		t.Errorf("titles = %v, renderer must not re-sort", titles)
	}
}

func TestMinifiedOutput(t *testing.T) {
	r := newRenderer(t, WithMinify())
	out, err := r.HTML([]models.PageSection{section("m", "partners", "P", models.SectionContent{Items: []models.Item{{Title: "A"}}}, true)})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "\n  ") {
		t.Error("minified output should not keep indentation")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Find(".card").Length() != 1 {
		t.Error("minified output lost the card")
	}
}
