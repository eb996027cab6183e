package render

// Strategy is the layout a section is drawn with.
type Strategy int

const (
	Generic Strategy = iota
	Timeline
	Grid
)

func (s Strategy) String() string {
	switch s {
	case Timeline:
		return "timeline"
	case Grid:
		return "grid"
	default:
		return "generic"
	}
}

// IsTimeline and IsGrid let templates branch on the enum itself.
func (s Strategy) IsTimeline() bool { return s == Timeline }

func (s Strategy) IsGrid() bool { return s == Grid }

// strategies maps section discriminators to their bespoke layouts. A new layout
// is one more entry here plus its template; the content model does not change.
var strategies = map[string]Strategy{
	"journey":  Timeline,
	"partners": Grid,
}

// StrategyFor returns the layout for a discriminator. Anything unmapped is Generic.
func StrategyFor(discriminator string) Strategy {
	if s, ok := strategies[discriminator]; ok {
		return s
	}
	return Generic
}
