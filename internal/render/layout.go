package render

import (
	"fmt"
	"html/template"
	"strings"

	"shieldsite/internal/models"
)

// TitleDelimiter splits a milestone title into its badge and heading.
const TitleDelimiter = " - "

// Block is a section prepared for drawing. Only the fields its Strategy uses are
// filled, and every empty field means the region is left out.
type Block struct {
	ID         string
	Section    string
	Title      string
	Strategy   Strategy
	Text       string
	HTML       template.HTML
	ImageURL   string
	Cards      []Card
	Milestones []Milestone
}

type Card struct {
	Title       string
	Description string
	ImageURL    string
}

type Milestone struct {
	Badge       string
	Heading     string
	Description string
	// Side alternates by position: even indexes sit left of the line, odd ones right.
	Side string
}

// Layout turns sections into blocks in the order given. Inactive sections are
// dropped; the rest are dispatched on their discriminator.
func Layout(sections []models.PageSection) []Block {
	blocks := make([]Block, 0, len(sections))
	for _, s := range sections {
		if !s.IsActive {
			continue
		}
		blocks = append(blocks, layoutSection(s))
	}
	return blocks
}

func layoutSection(s models.PageSection) Block {
	content := s.Body()
	block := Block{
		ID:       s.ID,
		Section:  s.Section,
		Title:    strings.TrimSpace(s.Title),
		Strategy: StrategyFor(s.Section),
		Text:     strings.TrimSpace(content.Text),
	}
	items := presentItems(content.Items)

	switch block.Strategy {
	case Timeline:
		block.Milestones = milestones(items)
	case Grid:
		block.Cards = cards(items)
	default:
		if html := strings.TrimSpace(content.HTML); html != "" {
			block.HTML = template.HTML(html)
		}
		block.ImageURL = strings.TrimSpace(content.ImageURL)
		block.Cards = cards(items)
	}
	return block
}

// SplitMilestoneTitle returns the badge and heading for the i-th (0-based) item.
// "2018 - Foundation Established" gives "2018" and "Foundation Established"; a
// title without the delimiter keeps its text as heading under a "Step N" badge.
func SplitMilestoneTitle(title string, i int) (badge, heading string) {
	badge = fmt.Sprintf("Step %d", i+1)
	heading = title
	before, after, found := strings.Cut(title, TitleDelimiter)
	if !found {
		return badge, heading
	}
	if b := strings.TrimSpace(before); b != "" {
		badge = b
	}
	if a := strings.TrimSpace(after); a != "" {
		heading = a
	}
	return badge, heading
}

// milestones numbers fallback badges by the item's stored position, so a
// dropped blank item still counts as a step. Sides alternate by drawn position.
func milestones(items []presentItem) []Milestone {
	if len(items) == 0 {
		return nil
	}
	out := make([]Milestone, len(items))
	for i, item := range items {
		badge, heading := SplitMilestoneTitle(item.Title, item.index)
		side := "left"
		if i%2 == 1 {
			side = "right"
		}
		out[i] = Milestone{
			Badge:       badge,
			Heading:     heading,
			Description: item.Description,
			Side:        side,
		}
	}
	return out
}

func cards(items []presentItem) []Card {
	if len(items) == 0 {
		return nil
	}
	out := make([]Card, len(items))
	for i, item := range items {
		out[i] = Card{
			Title:       item.Title,
			Description: item.Description,
			ImageURL:    item.ImageURL,
		}
	}
	return out
}

// presentItem is a trimmed item with its 0-based position in the stored list.
type presentItem struct {
	models.Item
	index int
}

// presentItems trims every field and drops items that carry nothing at all.
func presentItems(items []models.Item) []presentItem {
	var out []presentItem
	for i, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		item.Description = strings.TrimSpace(item.Description)
		item.ImageURL = strings.TrimSpace(item.ImageURL)
		if item.Title == "" && item.Description == "" && item.ImageURL == "" {
			continue
		}
		out = append(out, presentItem{Item: item, index: i})
	}
	return out
}
