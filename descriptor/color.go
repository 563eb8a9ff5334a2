package descriptor

// Color is an RGBA color with channels in [0,1].
//
// The host accent color is requested with a sentinel rather than a separate
// variant: all three RGB channels negative. The host tests for the sentinel the
// same way, so the encoding must be preserved exactly.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// NewColor builds a color, clamping every channel to [0,1].
func NewColor(red, green, blue, alpha float64) Color {
	return Color{
		Red:   clamp01(red),
		Green: clamp01(green),
		Blue:  clamp01(blue),
		Alpha: clamp01(alpha),
	}
}

// RGB builds an opaque color.
func RGB(red, green, blue float64) Color {
	return NewColor(red, green, blue, 1)
}

// Accent returns the sentinel that makes the host substitute its accent color.
func Accent() Color {
	return Color{Red: -1, Green: -1, Blue: -1, Alpha: 1}
}

// IsAccent reports whether c is the accent sentinel: true if and only if all
// three RGB channels are negative.
func (c Color) IsAccent() bool {
	return c.Red < 0 && c.Green < 0 && c.Blue < 0
}

// WithAlpha returns a copy with the alpha channel replaced (clamped).
func (c Color) WithAlpha(alpha float64) Color {
	c.Alpha = clamp01(alpha)
	return c
}

// normalized re-clamps a color decoded from the wire, preserving the accent
// sentinel in its canonical form.
func (c Color) normalized() Color {
	if c.IsAccent() {
		return Color{Red: -1, Green: -1, Blue: -1, Alpha: clamp01(c.Alpha)}
	}
	return NewColor(c.Red, c.Green, c.Blue, c.Alpha)
}

// Predefined colors.
var (
	White  = RGB(1, 1, 1)
	Black  = RGB(0, 0, 0)
	Gray   = RGB(0.56, 0.56, 0.58)
	Red    = RGB(1, 0.23, 0.19)
	Green  = RGB(0.2, 0.78, 0.35)
	Blue   = RGB(0, 0.48, 1)
	Orange = RGB(1, 0.58, 0)
	Yellow = RGB(1, 0.8, 0)
	Purple = RGB(0.69, 0.32, 0.87)
	Pink   = RGB(1, 0.18, 0.33)
	Teal   = RGB(0.19, 0.69, 0.78)
	Indigo = RGB(0.35, 0.34, 0.84)
)
