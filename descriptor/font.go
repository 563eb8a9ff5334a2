package descriptor

// FontWeight is the 9-level weight ordinal, lightest to heaviest.
type FontWeight int

const (
	WeightUltraLight FontWeight = iota
	WeightThin
	WeightLight
	WeightRegular
	WeightMedium
	WeightSemibold
	WeightBold
	WeightHeavy
	WeightBlack
)

func (w FontWeight) String() string {
	switch w {
	case WeightUltraLight:
		return "ultralight"
	case WeightThin:
		return "thin"
	case WeightLight:
		return "light"
	case WeightRegular:
		return "regular"
	case WeightMedium:
		return "medium"
	case WeightSemibold:
		return "semibold"
	case WeightBold:
		return "bold"
	case WeightHeavy:
		return "heavy"
	case WeightBlack:
		return "black"
	default:
		return "regular"
	}
}

// FontDesign selects the typeface family class.
type FontDesign string

const (
	DesignDefault    FontDesign = "default"
	DesignSerif      FontDesign = "serif"
	DesignRounded    FontDesign = "rounded"
	DesignMonospaced FontDesign = "monospaced"
)

// Font describes typography for a text slot. Size is caller-supplied point
// units and is intentionally not clamped.
type Font struct {
	Size             float64    `json:"size"`
	Weight           FontWeight `json:"weight"`
	Design           FontDesign `json:"design"`
	MonospacedDigits bool       `json:"monospaced_digits,omitempty"`
}

// NewFont builds a font descriptor.
func NewFont(size float64, weight FontWeight, design FontDesign) Font {
	return Font{Size: size, Weight: weight, Design: design}.normalized()
}

// DefaultFont is the host's standard body font.
func DefaultFont() Font {
	return Font{Size: 13, Weight: WeightRegular, Design: DesignDefault}
}

// WithMonospacedDigits returns a copy that renders digits at a fixed width.
func (f Font) WithMonospacedDigits() Font {
	f.MonospacedDigits = true
	return f
}

// normalized maps out-of-range ordinals and unknown designs back to defaults.
func (f Font) normalized() Font {
	if f.Weight < WeightUltraLight || f.Weight > WeightBlack {
		f.Weight = WeightRegular
	}
	switch f.Design {
	case DesignDefault, DesignSerif, DesignRounded, DesignMonospaced:
	default:
		f.Design = DesignDefault
	}
	return f
}

// TextStyle pairs a font with an optional color override. A nil color inherits
// the host's text color.
type TextStyle struct {
	Font  Font   `json:"font"`
	Color *Color `json:"color,omitempty"`
}

// NewTextStyle builds a text style with the host text color.
func NewTextStyle(font Font) TextStyle {
	return TextStyle{Font: font.normalized()}
}

// WithColor returns a copy with an explicit text color.
func (s TextStyle) WithColor(c Color) TextStyle {
	nc := c.normalized()
	s.Color = &nc
	return s
}

func (s TextStyle) normalized() TextStyle {
	s.Font = s.Font.normalized()
	if s.Color != nil {
		nc := s.Color.normalized()
		s.Color = &nc
	}
	return s
}
