package board

import "strings"

// Appearance is how a node type is drawn: an icon name and a hex colour.
type Appearance struct {
	Name  string
	Icon  string
	Color string
}

var builtinAppearance = map[NodeType]Appearance{
	TypePerson:     {Name: "Person", Icon: "User", Color: "#3b82f6"},
	TypeEvent:      {Name: "Event", Icon: "Calendar", Color: "#f43f5e"},
	TypeLocation:   {Name: "Location", Icon: "MapPin", Color: "#10b981"},
	TypeEvidence:   {Name: "Evidence", Icon: "FileText", Color: "#f59e0b"},
	TypeHypothesis: {Name: "Hypothesis", Icon: "Lightbulb", Color: "#8b5cf6"},
	TypeClue:       {Name: "Clue", Icon: "Fingerprint", Color: "#06b6d4"},
}

var neutralAppearance = Appearance{Name: "Record", Icon: "Info", Color: "#71717a"}

// CategoryIcons are the icon names a custom category may pick.
var CategoryIcons = []string{
	"Shield", "Activity", "Archive", "Briefcase", "Camera", "Car",
	"Database", "Globe", "HardDrive", "Lock", "Mail", "Phone", "Search",
	"Smartphone", "Truck", "Zap", "Fingerprint", "Lightbulb", "Info",
}

// IconGlyphs maps icon names to a single terminal glyph.
var IconGlyphs = map[string]string{
	"User": "☺", "Calendar": "◷", "MapPin": "⌖", "FileText": "▤",
	"Lightbulb": "✦", "Fingerprint": "⌘", "Shield": "⛨", "Activity": "∿",
	"Archive": "▦", "Briefcase": "▣", "Camera": "◉", "Car": "⊡",
	"Database": "≣", "Globe": "◍", "HardDrive": "▭", "Lock": "⊠",
	"Mail": "✉", "Phone": "☏", "Search": "⌕", "Smartphone": "▯",
	"Truck": "⊟", "Zap": "ϟ", "Info": "ⓘ",
}

// Appearance resolves a node type against the case's custom categories
// first and the built-in table second.
func (c *Case) Appearance(t NodeType) Appearance {
	if cat, ok := c.Category(string(t)); ok {
		return Appearance{Name: cat.Name, Icon: cat.Icon, Color: cat.Color}
	}
	if a, ok := builtinAppearance[t]; ok {
		return a
	}
	return neutralAppearance
}

// Glyph returns the terminal glyph for an icon name.
func Glyph(icon string) string {
	if g, ok := IconGlyphs[icon]; ok {
		return g
	}
	return IconGlyphs["Info"]
}

// StatusText is the label shown on a card: the custom status label when
// set, otherwise the default for the status.
func (n Node) StatusText() string {
	if n.StatusLabel != "" {
		return n.StatusLabel
	}
	switch n.Status {
	case StatusConfirmed:
		return "Confirmed"
	case StatusHypothesis:
		return "Hypothesis"
	default:
		return "Under review"
	}
}

// Summary lists the facts printed under a card title: person details,
// the street address, then custom fields.
func (n Node) Summary() []string {
	var out []string
	if pf := n.PersonFields; pf != nil {
		if pf.Age != "" {
			out = append(out, "age "+pf.Age)
		}
		if pf.TaxID != "" {
			out = append(out, "cpf "+pf.TaxID)
		}
	}
	if lf := n.LocationFields; lf != nil {
		var parts []string
		for _, p := range []string{lf.Street, lf.Number, lf.City} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	}
	for _, f := range n.CustomFields {
		if f.Label == "" && f.Value == "" {
			continue
		}
		out = append(out, f.Label+": "+f.Value)
	}
	return out
}
